package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Factory constructs an uninitialized module.
type Factory func() Module

// Registry maps definition types to module factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register associates a module type with a factory.
func (r *Registry) Register(typ string, factory Factory) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return fmt.Errorf("graph: module type must not be empty")
	}

	if factory == nil {
		return fmt.Errorf("graph: module factory for %q must not be nil", typ)
	}

	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("graph: module type %q already registered", typ)
	}

	r.factories[typ] = factory

	return nil
}

// MustRegister registers a factory and panics on error.
func (r *Registry) MustRegister(typ string, factory Factory) {
	if err := r.Register(typ, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for a module type.
func (r *Registry) Lookup(typ string) (Factory, bool) {
	if r == nil {
		return nil, false
	}

	f, ok := r.factories[typ]

	return f, ok
}

// Types lists the registered module types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}

	sort.Strings(types)

	return types
}

// Create constructs and initializes a module from a definition.
func (r *Registry) Create(def Definition) (Module, error) {
	factory, ok := r.Lookup(def.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModuleType, def.Type)
	}

	m := factory()
	if err := m.Initialize(def); err != nil {
		return nil, fmt.Errorf("graph: initialize %q: %w", def.Type, err)
	}

	m.base().SetName(def.Name)

	return m, nil
}
