// Package token defines the envelope passed between actors and the closed set
// of payload kinds the execution core knows how to reason about.
package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrIncompatible is returned when a payload does not satisfy an actor's
// declared input kinds.
var ErrIncompatible = errors.New("incompatible payload")

// Kind is the tagged-union discriminator for token payloads.
type Kind int

const (
	// KindUnknown matches any payload. Actors that do not care about the
	// payload type declare it.
	KindUnknown Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindContainer
	KindList
	// KindObject is any other Go value. Only KindUnknown accepts it besides itself.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindContainer:
		return "container"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf classifies a payload value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindUnknown
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	case Container, map[string]any:
		return KindContainer
	case []any, []string, []int, []float64:
		return KindList
	default:
		return KindObject
	}
}

// Accepts reports whether a consumer declaring k accepts a value of kind other.
func (k Kind) Accepts(other Kind) bool {
	return k == KindUnknown || other == KindUnknown || k == other
}

// Compatible reports whether at least one generated kind is accepted by one
// of the accepted kinds. Empty declarations are treated as KindUnknown.
func Compatible(generated, accepted []Kind) bool {
	if len(generated) == 0 || len(accepted) == 0 {
		return true
	}
	for _, g := range generated {
		for _, a := range accepted {
			if a.Accepts(g) {
				return true
			}
		}
	}
	return false
}

// Check returns ErrIncompatible if payload's kind is not among accepted.
func Check(payload any, accepted []Kind) error {
	if len(accepted) == 0 {
		return nil
	}
	kind := KindOf(payload)
	for _, a := range accepted {
		if a.Accepts(kind) {
			return nil
		}
	}
	return fmt.Errorf("%w: got %s, accepts %s", ErrIncompatible, kind, KindsString(accepted))
}

// KindsString renders a kind list for messages.
func KindsString(kinds []Kind) string {
	if len(kinds) == 0 {
		return KindUnknown.String()
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// Token carries one payload between actors. It is never mutated after it has
// been handed to a consumer; producers create a fresh Token per value.
type Token struct {
	payload    any
	provenance string
}

// New creates a token without provenance.
func New(payload any) *Token {
	return &Token{payload: payload}
}

// NewFrom creates a token recording the full name of the producing actor.
func NewFrom(payload any, source string) *Token {
	return &Token{payload: payload, provenance: source}
}

// Payload returns the wrapped value.
func (t *Token) Payload() any {
	if t == nil {
		return nil
	}
	return t.payload
}

// Provenance returns the full name of the producing actor, if recorded.
func (t *Token) Provenance() string {
	if t == nil {
		return ""
	}
	return t.provenance
}

// Kind returns the payload kind.
func (t *Token) Kind() Kind {
	return KindOf(t.Payload())
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.provenance == "" {
		return fmt.Sprintf("%v", t.payload)
	}
	return fmt.Sprintf("%v (from %s)", t.payload, t.provenance)
}

// Container is a multi-slot payload: a named set of values travelling as one token.
type Container map[string]any

// AsContainer converts container-kind payloads. ok is false for anything else.
func AsContainer(v any) (Container, bool) {
	switch c := v.(type) {
	case Container:
		return c, true
	case map[string]any:
		return Container(c), true
	default:
		return nil, false
	}
}

// Names returns the slot names in sorted order.
func (c Container) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Value returns the named slot.
func (c Container) Value(name string) (any, bool) {
	v, ok := c[name]
	return v, ok
}
