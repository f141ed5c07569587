package cache

import "sync"

var (
	defaultMu      sync.RWMutex
	defaultBackend Backend
)

// SetDefault registers the process-global fallback Backend used by calls that
// run outside any ambient context. Passing nil clears the registration.
func SetDefault(b Backend) {
	defaultMu.Lock()
	defaultBackend = b
	defaultMu.Unlock()
}

// Default returns the process-global fallback Backend, or nil when none has
// been registered.
func Default() Backend {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultBackend
}
