package adapter

import (
	"sort"
	"strings"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = map[string]Adapter{}
)

// Register adds an adapter to the lookup under its platform name.
// Registration typically happens from an adapter package's init.
func Register(a Adapter) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(a.Config().Name)] = a
}

// Get returns the adapter registered for a platform name.
func Get(name string) (Adapter, bool) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := registry[strings.ToLower(name)]
	return a, ok
}

// Names lists registered platform names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
