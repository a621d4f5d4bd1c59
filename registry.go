package forkwork

import (
	"fmt"
	"sort"
	"sync"
)

// The work registry maps names to work functions. A worker process is a fresh
// copy of the binary, so the name travels in the environment and both sides
// must have registered the same functions before Main runs.

var (
	registryMu sync.RWMutex
	registry   = make(map[string]WorkFunc)
)

// Register makes fn available to orchestrators and worker processes under
// name. Register before calling Main, typically from an init function or the
// top of main. A duplicate name or nil fn panics: both are programmer errors
// that would otherwise surface as misbehaving workers much later.
func Register(name string, fn WorkFunc) {
	if name == "" {
		panic("forkwork: Register with empty name")
	}
	if fn == nil {
		panic(fmt.Sprintf("forkwork: Register %q with nil work function", name))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("forkwork: Register called twice for %q", name))
	}
	registry[name] = fn
}

// Unregister removes a registered work function. Mostly useful in tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// RegisteredWork returns the sorted names of all registered work functions.
func RegisteredWork() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupWork(name string) (WorkFunc, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrWorkNotFound)
	}
	return fn, nil
}
