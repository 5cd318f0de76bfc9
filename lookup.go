package dispatch

import "sync"

// Lookup maps service identifiers to instances. Implementations decide whether
// Get returns a shared instance or a fresh one per call; configurators applied
// by a Dispatcher accumulate on shared instances.
type Lookup interface {
	Get(id string) (any, error)
}

// LookupFunc is an adapter to allow ordinary functions as a Lookup.
type LookupFunc func(id string) (any, error)

// Get calls f(id).
func (f LookupFunc) Get(id string) (any, error) {
	return f(id)
}

// Factory builds a service instance.
type Factory func() (any, error)

type scope int

const (
	scopeShared scope = iota
	scopeFresh
)

type entry struct {
	scope    scope
	instance any
	built    bool
	factory  Factory
}

// Container is a Lookup safe for concurrent use. Each registration states
// whether the instance is shared between Get calls:
//
//   - Set and Singleton register shared instances
//   - Factory registers a constructor called on every Get
//
// Callers needing isolated per-occurrence configuration should register a
// Factory or use distinct identifiers.
type Container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		entries: make(map[string]*entry),
	}
}

// Set registers a shared instance under id.
func (c *Container) Set(id string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &entry{scope: scopeShared, instance: instance, built: true}
}

// Singleton registers a factory called on the first Get of id. Its result is
// shared by every later Get. A failed build is not cached.
func (c *Container) Singleton(id string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &entry{scope: scopeShared, factory: factory}
}

// Factory registers a factory called on every Get of id.
func (c *Container) Factory(id string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &entry{scope: scopeFresh, factory: factory}
}

// Has reports whether id is registered.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[id]
	return ok
}

// Get implements Lookup. Unknown identifiers yield a *NotFoundError.
func (c *Container) Get(id string) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	var (
		built    bool
		instance any
	)
	if ok {
		built, instance = e.built, e.instance
	}
	c.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if e.scope == scopeShared && built {
		return instance, nil
	}

	// factories run unlocked so they may call back into the container
	instance, err := e.factory()
	if err != nil {
		return nil, err
	}
	if e.scope == scopeFresh {
		return instance, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.built {
		return e.instance, nil
	}
	e.instance, e.built = instance, true
	return instance, nil
}
