package delay

import "sync"

// MapOverrides is a concurrency-safe Overrides backed by a map.
type MapOverrides struct {
	mu     sync.RWMutex
	values map[string]any
}

var _ Overrides = (*MapOverrides)(nil)

// NewMapOverrides returns an empty override set.
func NewMapOverrides() *MapOverrides {
	return &MapOverrides{values: make(map[string]any)}
}

// Set stores a raw override. Validation happens at lookup time.
func (m *MapOverrides) Set(scope Scope, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[stateKey(scope, key)] = value
}

// Delete removes an override.
func (m *MapOverrides) Delete(scope Scope, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, stateKey(scope, key))
}

func (m *MapOverrides) Lookup(scope Scope, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[stateKey(scope, key)]
	return v, ok
}
