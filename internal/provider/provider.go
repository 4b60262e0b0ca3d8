// Package provider abstracts the external text-generation service that
// persona turns are executed against.
package provider

import (
	"context"
	"fmt"
	"sync"
)

// Generator defines the interface for text-generation backends.
// maxSentences is a soft length hint forwarded to the backend; callers must
// not rely on it being enforced.
type Generator interface {
	// Name returns the generator's identifier.
	Name() string

	// DisplayName returns a human-friendly name.
	DisplayName() string

	// Generate sends a prompt and returns the generated text. Identical
	// prompts may legitimately produce different text; results are never
	// cached across turns.
	Generate(ctx context.Context, prompt string, maxSentences int) (string, error)

	// Available checks if the backend is reachable/installed.
	Available() bool
}

// Registry manages available generators.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates a new generator registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry.
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[g.Name()] = g
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("generator not found: %s", name)
	}
	return g, nil
}

// List returns all registered generators.
func (r *Registry) List() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Generator, 0, len(r.generators))
	for _, g := range r.generators {
		out = append(out, g)
	}
	return out
}

// Available returns all generators that are currently usable.
func (r *Registry) Available() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Generator
	for _, g := range r.generators {
		if g.Available() {
			out = append(out, g)
		}
	}
	return out
}
