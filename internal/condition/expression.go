package condition

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// Expression evaluates a boolean expr-lang program. The program sees:
//
//	input          the payload of the current token, or nil
//	vars           the variables as a map of strings
//	has(key)       whether a storage key exists
//	stored(key)    a storage value, or nil
type Expression struct {
	Source string

	program *vm.Program
}

func (e *Expression) Configure(o *options.Options) error {
	var err error
	e.Source, err = o.String("expression", e.Source)
	return err
}

func (e *Expression) SetUp(context.Context) error {
	if e.Source == "" {
		return errors.New("expression: empty source")
	}
	program, err := expr.Compile(e.Source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("expression: %w", err)
	}
	e.program = program
	return nil
}

func (e *Expression) Evaluate(_ context.Context, owner actor.Actor, t *token.Token) (bool, error) {
	if e.program == nil {
		return false, errors.New("expression: not set up")
	}
	env := owner.Core().Env()
	out, err := expr.Run(e.program, map[string]any{
		"input": t.Payload(),
		"vars":  env.Variables.Snapshot(),
		"has":   env.Storage.Has,
		"stored": func(key string) any {
			v, _ := env.Storage.Get(key)
			return v
		},
	})
	if err != nil {
		return false, fmt.Errorf("expression %q: %w", e.Source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
