// Package integration routes workflow steps to named external capabilities.
// The workflow engine treats every integration name as opaque: it only needs
// a call to succeed or fail.
package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher hands a step's work to a named capability provider.
type Dispatcher interface {
	Call(ctx context.Context, integration, action string, params, execContext map[string]interface{}) (map[string]interface{}, error)
}

// Handler executes one integration's actions.
type Handler interface {
	Call(ctx context.Context, action string, params, execContext map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, action string, params, execContext map[string]interface{}) (map[string]interface{}, error)

func (f HandlerFunc) Call(ctx context.Context, action string, params, execContext map[string]interface{}) (map[string]interface{}, error) {
	return f(ctx, action, params, execContext)
}

// Registry maps integration names to handlers. Registration happens at
// composition time; Call is safe for concurrent use afterward.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Names returns the registered integration names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches to the named integration. An unknown name is an error the
// workflow engine records as the step's failure.
func (r *Registry) Call(ctx context.Context, integration, action string, params, execContext map[string]interface{}) (map[string]interface{}, error) {
	r.mu.RLock()
	h, ok := r.handlers[integration]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("integration %q is not registered", integration)
	}
	out, err := h.Call(ctx, action, params, execContext)
	if err != nil {
		return nil, fmt.Errorf("integration %s action %s: %w", integration, action, err)
	}
	return out, nil
}

// Simulated returns a handler that logs the call and reports success. It
// backs local serve runs where the real capability providers are not wired.
func Simulated(name string, logger zerolog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, action string, params, execContext map[string]interface{}) (map[string]interface{}, error) {
		logger.Info().
			Str("integration", name).
			Str("action", action).
			Int("params", len(params)).
			Msg("simulated integration call")
		return map[string]interface{}{"simulated": true, "integration": name, "action": action}, nil
	})
}
