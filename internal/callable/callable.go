// Package callable resolves and invokes actors referenced by name from
// outside the normal routing path.
//
// Callable actors usually live in a CallableActors container. A reference
// is resolved by walking up from the referencing actor: at each ancestor
// the callable containers among its children are searched depth-first for
// an exact name match. The first ancestor level with a match wins, so an
// inner scope shadows an outer one. Two matches on the same level are an
// error.
package callable

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/token"
)

var (
	ErrNotFound     = errors.New("failed to locate callable actor")
	ErrAmbiguous    = errors.New("ambiguous callable actor")
	ErrRoleMismatch = errors.New("callable actor has incompatible role")
)

// Find locates the callable actor called name as seen from the actor from.
func Find(from actor.Actor, name string) (actor.Actor, error) {
	for h := from.Core().Parent(); h != nil; h = h.Core().Parent() {
		var matches []actor.Actor
		for i := 0; i < h.Size(); i++ {
			c, ok := h.Get(i).(actor.CallableContainer)
			if !ok {
				continue
			}
			matches = append(matches, search(c, name, from)...)
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			paths := make([]string, len(matches))
			for i, m := range matches {
				paths[i] = m.Core().FullName()
			}
			return nil, fmt.Errorf("%w '%s': %s", ErrAmbiguous, name, strings.Join(paths, ", "))
		}
	}
	return nil, fmt.Errorf("%w '%s'", ErrNotFound, name)
}

func search(c actor.CallableContainer, name string, exclude actor.Actor) []actor.Actor {
	var out []actor.Actor
	for i := 0; i < c.Size(); i++ {
		actor.Walk(c.Get(i), func(n actor.Actor) bool {
			if n != exclude && n.Core().Name() == name {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// Reference is a named link from one actor to a callable actor. The
// resolved target is memoized until the structure of the tree changes.
type Reference struct {
	Name string
	// Roles lists the acceptable roles of the target. Empty accepts any.
	Roles []actor.Role
	// Optional references resolve to nil instead of failing when the
	// target does not exist.
	Optional bool

	target   actor.Actor
	version  uint64
	resolved bool
}

// NewReference returns a reference to name requiring one of roles.
func NewReference(name string, roles ...actor.Role) *Reference {
	return &Reference{Name: name, Roles: roles}
}

// Resolve returns the target as seen from the actor owning the reference.
// A nil target with a nil error means an optional target is missing.
func (r *Reference) Resolve(from actor.Actor) (actor.Actor, error) {
	if r.Name == "" {
		return nil, errors.New("no callable actor name configured")
	}
	v := actor.Version(from)
	if r.resolved && r.version == v {
		return r.target, nil
	}

	target, err := Find(from, r.Name)
	if err != nil {
		if r.Optional && errors.Is(err, ErrNotFound) {
			r.remember(nil, v)
			return nil, nil
		}
		return nil, err
	}
	if role := actor.RoleOf(target); len(r.Roles) > 0 && !slices.Contains(r.Roles, role) {
		return nil, fmt.Errorf("%w: '%s' is a %s, expected %s", ErrRoleMismatch, r.Name, role, rolesString(r.Roles))
	}
	r.remember(target, v)
	return target, nil
}

// Target returns the last resolved target without resolving again.
func (r *Reference) Target() actor.Actor { return r.target }

// Reset drops the memoized target.
func (r *Reference) Reset() {
	r.target = nil
	r.resolved = false
}

func (r *Reference) remember(target actor.Actor, version uint64) {
	r.target = target
	r.version = version
	r.resolved = true
}

func rolesString(roles []actor.Role) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = r.String()
	}
	return strings.Join(s, " or ")
}

// Invoke feeds tok to target, executes it once and collects all pending
// outputs. The target's call lock is held for the whole sequence so
// concurrent invocations of one target never overlap. A nil tok skips the
// feed step.
func Invoke(ctx context.Context, target actor.Actor, tok *token.Token) ([]*token.Token, error) {
	mu := target.Core().CallLock()
	mu.Lock()
	defer mu.Unlock()

	if target.Core().IsStopped() {
		return nil, actor.ErrStopped
	}
	if tok != nil {
		c, ok := target.(actor.InputConsumer)
		if !ok {
			return nil, fmt.Errorf("%w: '%s' does not accept input", ErrRoleMismatch, target.Core().Name())
		}
		if err := actor.Input(c, tok); err != nil {
			return nil, err
		}
	}
	if err := actor.Execute(ctx, target); err != nil {
		return nil, err
	}

	var out []*token.Token
	if p, ok := target.(actor.OutputProducer); ok {
		for p.HasPendingOutput() {
			out = append(out, p.Output())
		}
	}
	return out, nil
}

// Exclusive runs fn while holding the call lock of target.
func Exclusive(target actor.Actor, fn func()) {
	mu := target.Core().CallLock()
	mu.Lock()
	defer mu.Unlock()
	fn()
}
