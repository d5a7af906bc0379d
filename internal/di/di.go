// Package di is a small lazy-singleton service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves registered services by name.
type ServiceRegistry interface {
	Get(name string) any
}

// Container registers values and lazy factories.
type Container interface {
	ServiceRegistry
	Register(name string, v any)
	RegisterFactory(name string, f func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	values    map[string]any
	factories map[string]func(ServiceRegistry) any
	resolving map[string]bool
}

// NewContainer returns an empty Container.
func NewContainer() Container {
	return &container{
		values:    make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
		resolving: make(map[string]bool),
	}
}

func (c *container) Register(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = v
}

func (c *container) RegisterFactory(name string, f func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = f
	delete(c.values, name)
}

// Get returns the service, building it from its factory on first use.
// Unknown names and dependency cycles panic: both are wiring bugs.
func (c *container) Get(name string) any {
	c.mu.Lock()
	if v, ok := c.values[name]; ok {
		c.mu.Unlock()
		return v
	}
	f, ok := c.factories[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	if c.resolving[name] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: dependency cycle at %q", name))
	}
	c.resolving[name] = true
	c.mu.Unlock()

	v := f(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.resolving, name)
	if existing, ok := c.values[name]; ok {
		return existing
	}
	c.values[name] = v
	return v
}

// Token is a typed service key.
type Token[T any] struct {
	name string
}

// NewToken creates a token for a service of type T.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registry key.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazy factory for the token.
func RegisterToken[T any](c Container, tok Token[T], f func(ServiceRegistry) T) {
	c.RegisterFactory(tok.name, func(sr ServiceRegistry) any { return f(sr) })
}

// GetToken resolves the token's service.
func GetToken[T any](sr ServiceRegistry, tok Token[T]) T {
	v, ok := sr.Get(tok.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", tok.name))
	}
	return v
}
