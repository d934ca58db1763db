package workflow

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound is returned for unknown workflow or execution ids.
	ErrNotFound = errors.New("not found")
	// ErrDisabled is returned when starting a workflow that is switched off.
	ErrDisabled = errors.New("workflow disabled")
)

// Registry holds the workflow catalog, keyed by definition id. It is
// read-only after construction.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry builds a registry from the given definitions. A duplicate id
// is a configuration error and fails construction.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for i := range defs {
		def := defs[i]
		if def.ID == "" {
			return nil, fmt.Errorf("workflow definition %q has empty id", def.Name)
		}
		if _, exists := r.defs[def.ID]; exists {
			return nil, fmt.Errorf("duplicate workflow id %q", def.ID)
		}
		r.defs[def.ID] = &def
	}
	return r, nil
}

// Get returns the definition for id, or ErrNotFound.
func (r *Registry) Get(id string) (*Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("workflow %q: %w", id, ErrNotFound)
	}
	return def, nil
}

// List returns isolated copies of all definitions ordered by id.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
