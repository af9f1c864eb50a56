// Package mop is a compact meta-object protocol: classes and roles with
// flattened method tables, typed attributes, validated signatures, method
// modifiers and a write-once class registry.
package mop

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry is the process-wide class table. Each name is registered once;
// a registered class is frozen and read-only afterwards.
type Registry struct {
	classes map[string]*Class
	order   []string
	logger  *zap.Logger
	mu      sync.RWMutex
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		classes: make(map[string]*Class),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register finalizes and stores a class. A class that fails its final
// checks is not stored.
func (r *Registry) Register(c *Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[c.Name]; exists {
		return fmt.Errorf("%s %s is already registered", c.Kind, c.Name)
	}
	if err := c.finalize(); err != nil {
		r.logger.Debug("class rejected", zap.String("class", c.Name), zap.Error(err))
		return err
	}

	r.classes[c.Name] = c
	r.order = append(r.order, c.Name)
	r.logger.Debug("registered",
		zap.String("kind", c.Kind.String()),
		zap.String("class", c.Name),
		zap.Int("attributes", len(c.attrOrder)),
		zap.Int("methods", len(c.methodOrder)),
	)
	return nil
}

// RegisterAll registers a batch of classes atomically: if any class fails
// its final checks, none of them is stored.
func (r *Registry) RegisterAll(classes ...*Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if _, exists := r.classes[c.Name]; exists || seen[c.Name] {
			return fmt.Errorf("%s %s is already registered", c.Kind, c.Name)
		}
		seen[c.Name] = true
	}
	for _, c := range classes {
		if err := c.finalize(); err != nil {
			r.logger.Debug("batch rejected", zap.String("class", c.Name), zap.Error(err))
			return err
		}
	}

	for _, c := range classes {
		r.classes[c.Name] = c
		r.order = append(r.order, c.Name)
	}
	r.logger.Debug("registered batch", zap.Int("classes", len(classes)))
	return nil
}

// Lookup returns a registered class by name
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[name]
	return c, ok
}

// Exists checks if a class or role is registered
func (r *Registry) Exists(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// ClassKind implements types.ClassCatalog
func (r *Registry) ClassKind(name string) (isRole bool, ok bool) {
	c, ok := r.Lookup(name)
	if !ok {
		return false, false
	}
	return c.IsRole(), true
}

// Names returns registered names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Classes returns registered classes in registration order
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Class, len(r.order))
	for i, name := range r.order {
		out[i] = r.classes[name]
	}
	return out
}

// Count returns the number of registered classes and roles
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.classes)
}

// New constructs an instance of a registered class.
func (r *Registry) New(class string, args map[string]any) (*Instance, error) {
	c, ok := r.Lookup(class)
	if !ok {
		return nil, fmt.Errorf("unknown class %s", class)
	}
	return c.New(args)
}

// Logger returns the registry logger
func (r *Registry) Logger() *zap.Logger {
	return r.logger
}
