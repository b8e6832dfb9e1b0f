// Package variables implements the run-scoped variable store and the late
// `${name}` substitution applied to actor options every time they are read.
package variables

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

const (
	// Start opens a variable placeholder.
	Start = "${"
	// End closes a variable placeholder.
	End = "}"
)

// Store is a flat name/value table. All methods are safe for concurrent use,
// background producers may set variables while the main pipeline reads them.
type Store struct {
	mu   sync.RWMutex
	vars map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{vars: make(map[string]string)}
}

// NewFrom returns a store initialised with a copy of bindings.
func NewFrom(bindings map[string]string) *Store {
	s := New()
	for k, v := range bindings {
		s.vars[k] = v
	}
	return s
}

// Set stores value under name, replacing any previous value.
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	s.vars[name] = value
	s.mu.Unlock()
}

// Get returns the value of name.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Has reports whether name is bound.
func (s *Store) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Remove unbinds name.
func (s *Store) Remove(name string) {
	s.mu.Lock()
	delete(s.vars, name)
	s.mu.Unlock()
}

// Len returns the number of bound variables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}

// Names returns all bound names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the current bindings.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Clear removes every binding.
func (s *Store) Clear() {
	s.mu.Lock()
	s.vars = make(map[string]string)
	s.mu.Unlock()
}

// Reset replaces the content of the store with a copy of bindings.
func (s *Store) Reset(bindings map[string]string) {
	fresh := make(map[string]string, len(bindings))
	for k, v := range bindings {
		fresh[k] = v
	}
	s.mu.Lock()
	s.vars = fresh
	s.mu.Unlock()
}

// Assign copies the variables of other whose names match filter into s.
// A nil filter copies everything.
func (s *Store) Assign(other *Store, filter glob.Glob) {
	if other == nil || other == s {
		return
	}
	snapshot := other.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range snapshot {
		if filter == nil || filter.Match(k) {
			s.vars[k] = v
		}
	}
}

// Expand substitutes every `${name}` placeholder in raw with the current value
// of name. Unknown names are left verbatim.
func (s *Store) Expand(raw string) string {
	if !strings.Contains(raw, Start) {
		return raw
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	rest := raw
	for {
		i := strings.Index(rest, Start)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		j := strings.Index(rest[i+len(Start):], End)
		if j < 0 {
			b.WriteString(rest)
			break
		}
		name := rest[i+len(Start) : i+len(Start)+j]
		b.WriteString(rest[:i])
		if v, ok := s.vars[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(rest[i : i+len(Start)+j+len(End)])
		}
		rest = rest[i+len(Start)+j+len(End):]
	}
	return b.String()
}

// Placeholder returns the `${name}` reference for name.
func Placeholder(name string) string {
	return Start + name + End
}

// LoadFile reads initial bindings from a YAML mapping. Non-string scalars are
// rendered with their default formatting.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML mapping of variable bindings.
func Parse(data []byte) (map[string]string, error) {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode variables: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case map[string]any, []any:
			return nil, fmt.Errorf("variable %q must be a scalar, got %T", k, v)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}
