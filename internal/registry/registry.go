package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/condition"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// ActorFactory returns a new, unconfigured actor.
type ActorFactory func() actor.Actor

// ConditionFactory returns a new, unconfigured condition.
type ConditionFactory func() condition.Condition

// Registry holds the constructors for a single application instance.
type Registry struct {
	actors     map[string]ActorFactory
	conditions map[string]ConditionFactory
}

// New creates a registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{
		actors:     make(map[string]ActorFactory),
		conditions: make(map[string]ConditionFactory),
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterActor registers the constructor for an actor type.
func (r *Registry) RegisterActor(name string, f ActorFactory) {
	if _, exists := r.actors[name]; exists {
		panic(fmt.Sprintf("actor type '%s' already registered", name))
	}
	slog.Debug("Registering actor type.", "type", name)
	r.actors[name] = f
}

// RegisterCondition registers the constructor for a condition type.
func (r *Registry) RegisterCondition(name string, f ConditionFactory) {
	if _, exists := r.conditions[name]; exists {
		panic(fmt.Sprintf("condition type '%s' already registered", name))
	}
	slog.Debug("Registering condition type.", "type", name)
	r.conditions[name] = f
}

// NewActor constructs an actor of the given type.
func (r *Registry) NewActor(name string) (actor.Actor, error) {
	f, ok := r.actors[name]
	if !ok {
		return nil, fmt.Errorf("unknown actor type '%s'", name)
	}
	return f(), nil
}

// NewCondition constructs a condition of the given type.
func (r *Registry) NewCondition(name string) (condition.Condition, error) {
	f, ok := r.conditions[name]
	if !ok {
		return nil, fmt.Errorf("unknown condition type '%s'", name)
	}
	return f(), nil
}

// ActorTypes returns the registered actor type tags, sorted.
func (r *Registry) ActorTypes() []string { return sortedKeys(r.actors) }

// ConditionTypes returns the registered condition type tags, sorted.
func (r *Registry) ConditionTypes() []string { return sortedKeys(r.conditions) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
