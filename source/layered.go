package source

import (
	"fmt"
	"sync"
)

// Layered holds an ordered set of named sources.
// Lookups consult layers in registration order and stop at the first hit.
// It is safe for concurrent use.
type Layered struct {
	mu      sync.RWMutex
	order   []string          // stable lookup order
	backing map[string]Source // name -> source
}

// NewLayered creates an empty Layered source.
func NewLayered() *Layered {
	return &Layered{
		backing: make(map[string]Source),
	}
}

// Register adds or replaces the layer called name.
// A new name is appended to the end of the lookup order; a known name keeps its position.
// Panics if name is empty or src is nil.
func (l *Layered) Register(name string, src Source) {
	if name == "" {
		panic("source: layer name must not be empty")
	}
	if src == nil {
		panic(fmt.Sprintf("source: layer %q has nil source", name))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.backing[name]; !exists {
		l.order = append(l.order, name)
	}
	l.backing[name] = src
}

// Names returns a copy of the layer names in lookup order.
func (l *Layered) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Layered) Lookup(key string) (string, bool) {
	v, _, ok := l.LookupLayer(key)
	return v, ok
}

// LookupLayer is Lookup that also reports which layer answered.
func (l *Layered) LookupLayer(key string) (value, layer string, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, name := range l.order {
		if v, found := l.backing[name].Lookup(key); found {
			return v, name, true
		}
	}
	return "", "", false
}
