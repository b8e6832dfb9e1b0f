package standard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// UpperCase turns strings into upper case.
type UpperCase struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue
}

func (u *UpperCase) Accepts() []token.Kind   { return []token.Kind{token.KindString} }
func (u *UpperCase) Generates() []token.Kind { return []token.Kind{token.KindString} }

func (u *UpperCase) Execute(context.Context) error {
	in := u.TakeInput()
	u.Push(u.NewToken(strings.ToUpper(in.Payload().(string))))
	return nil
}

func (u *UpperCase) CleanUp() {
	u.ClearInput()
	u.ClearOutput()
}

// Increment adds a fixed amount to numbers. Integers stay integers as long
// as the amount is whole.
type Increment struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue

	Amount float64
}

func NewIncrement() *Increment { return &Increment{Amount: 1} }

func (i *Increment) Configure(o *options.Options) error {
	var err error
	i.Amount, err = o.Float("increment", i.Amount)
	return err
}

func (i *Increment) Accepts() []token.Kind   { return []token.Kind{token.KindInt, token.KindFloat} }
func (i *Increment) Generates() []token.Kind { return []token.Kind{token.KindInt, token.KindFloat} }

func (i *Increment) Execute(context.Context) error {
	in := i.TakeInput()
	whole := i.Amount == math.Trunc(i.Amount)

	var out any
	switch v := in.Payload().(type) {
	case int:
		if whole {
			out = v + int(i.Amount)
		} else {
			out = float64(v) + i.Amount
		}
	case int64:
		if whole {
			out = v + int64(i.Amount)
		} else {
			out = float64(v) + i.Amount
		}
	case float64:
		out = v + i.Amount
	case float32:
		out = float64(v) + i.Amount
	default:
		return fmt.Errorf("cannot increment %T", v)
	}
	i.Push(i.NewToken(out))
	return nil
}

func (i *Increment) CleanUp() {
	i.ClearInput()
	i.ClearOutput()
}

// SetVariable sets a variable and passes its input on. Without a
// configured value the string form of the payload is used.
type SetVariable struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue

	Name  string
	Value string
	// HasValue is set when Value was configured, even if empty.
	HasValue bool
}

func (s *SetVariable) Configure(o *options.Options) error {
	var err error
	if s.Name, err = o.String("var_name", ""); err != nil {
		return err
	}
	s.HasValue = o.Has("var_value")
	s.Value, err = o.String("var_value", "")
	return err
}

func (s *SetVariable) Accepts() []token.Kind   { return nil }
func (s *SetVariable) Generates() []token.Kind { return nil }

func (s *SetVariable) SetUp(context.Context) error {
	if s.Name == "" {
		return errors.New("no variable name configured")
	}
	return nil
}

func (s *SetVariable) Execute(ctx context.Context) error {
	in := s.TakeInput()
	value := fmt.Sprint(in.Payload())
	if s.HasValue {
		value = s.Expand(s.Value)
	}
	s.Env().Variables.Set(s.Name, value)
	s.Logger(ctx).Debug("Variable set.", "var_name", s.Name, "value", value)
	s.Push(in)
	return nil
}

func (s *SetVariable) CleanUp() {
	s.ClearInput()
	s.ClearOutput()
}
