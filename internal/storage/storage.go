// Package storage implements the run-scoped key/value table actors use to hand
// arbitrary objects to disconnected parts of a flow.
//
// The store enforces no ownership or type contract: whoever reads a value is
// responsible for asserting the type it expects. Besides the regular table the
// store manages named LRU caches, which are bounded and evict their oldest
// entries silently.
package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// Start opens a storage placeholder in strings passed to Expand.
	Start = "%{"
	// End closes a storage placeholder.
	End = "}"
)

// Storage is safe for concurrent use.
type Storage struct {
	mu     sync.RWMutex
	data   map[string]any
	caches map[string]*lru.Cache[string, any]
}

// New returns an empty storage.
func New() *Storage {
	return &Storage{
		data:   make(map[string]any),
		caches: make(map[string]*lru.Cache[string, any]),
	}
}

// Put stores value under key and returns the previous value, if any.
func (s *Storage) Put(key string, value any) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data[key]
	s.data[key] = value
	return prev, ok
}

// Update replaces the value under key with the result of fn, holding the
// write lock for the whole read-modify-write.
func (s *Storage) Update(key string, fn func(old any, ok bool) any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.data[key]
	s.data[key] = fn(old, ok)
}

// Get returns the value stored under key.
func (s *Storage) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Storage) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Remove deletes key and returns the removed value.
func (s *Storage) Remove(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	delete(s.data, key)
	return v, ok
}

// RemoveMatching deletes every regular key matched by pattern and returns how
// many were removed.
func (s *Storage) RemoveMatching(pattern glob.Glob) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.data {
		if pattern.Match(k) {
			delete(s.data, k)
			n++
		}
	}
	return n
}

// Keys returns the regular keys, sorted.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of regular entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear drops all regular entries and all caches.
func (s *Storage) Clear() {
	s.mu.Lock()
	s.data = make(map[string]any)
	s.caches = make(map[string]*lru.Cache[string, any])
	s.mu.Unlock()
}

// AddCache creates (or replaces) the named LRU cache holding at most size entries.
func (s *Storage) AddCache(name string, size int) error {
	c, err := lru.New[string, any](size)
	if err != nil {
		return fmt.Errorf("failed to create cache %q: %w", name, err)
	}
	s.mu.Lock()
	s.caches[name] = c
	s.mu.Unlock()
	return nil
}

// Caches returns the cache names, sorted.
func (s *Storage) Caches() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.caches))
	for k := range s.caches {
		names = append(names, k)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (s *Storage) cache(name string) (*lru.Cache[string, any], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.caches[name]
	return c, ok
}

// PutCached stores value in the named cache. It fails if the cache does not exist.
func (s *Storage) PutCached(cache, key string, value any) error {
	c, ok := s.cache(cache)
	if !ok {
		return fmt.Errorf("unknown storage cache %q", cache)
	}
	c.Add(key, value)
	return nil
}

// GetCached reads key from the named cache.
func (s *Storage) GetCached(cache, key string) (any, bool) {
	c, ok := s.cache(cache)
	if !ok {
		return nil, false
	}
	return c.Get(key)
}

// RemoveCached deletes key from the named cache.
func (s *Storage) RemoveCached(cache, key string) bool {
	c, ok := s.cache(cache)
	if !ok {
		return false
	}
	return c.Remove(key)
}

// CacheLen returns the number of entries in the named cache.
func (s *Storage) CacheLen(cache string) int {
	c, ok := s.cache(cache)
	if !ok {
		return 0
	}
	return c.Len()
}

// Clone returns a shallow copy of the regular entries matching filter (all
// entries when filter is nil). Caches are not copied.
func (s *Storage) Clone(filter glob.Glob) *Storage {
	out := New()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.data {
		if filter == nil || filter.Match(k) {
			out.data[k] = v
		}
	}
	return out
}

// Assign copies the regular entries of other matching filter into s.
func (s *Storage) Assign(other *Storage, filter glob.Glob) {
	if other == nil || other == s {
		return
	}
	src := other.Clone(filter)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range src.data {
		s.data[k] = v
	}
}

// Expand substitutes `%{key}` placeholders with the string form of the
// stored value in a single left-to-right pass. Substituted text is not
// expanded again and unknown keys are left verbatim.
func (s *Storage) Expand(raw string) string {
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
		key := rest[i+len(Start) : i+len(Start)+j]
		b.WriteString(rest[:i])
		if v, ok := s.data[key]; ok {
			b.WriteString(fmt.Sprint(v))
		} else {
			b.WriteString(rest[i : i+len(Start)+j+len(End)])
		}
		rest = rest[i+len(Start)+j+len(End):]
	}
	return b.String()
}
