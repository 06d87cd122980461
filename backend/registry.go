package backend

import (
	"sort"
	"sync"

	"github.com/gogpu/glcontext"
)

// Entry describes a registered canvas backend.
type Entry struct {
	// Name is the unique identifier of the backend. It is also the
	// identifier contexts are taken with.
	Name string

	// Priority determines selection order (higher = preferred).
	//   - 100: native windowing (GLFW)
	//   - 10: headless stand-ins
	Priority int

	// Factory creates canvases.
	Factory Factory

	// Available reports whether the backend can run on this system.
	Available func() bool
}

// Registry holds canvas backend factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// globalRegistry is the registry used by the package-level functions.
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry. Most code uses the global
// registry through Register and Open.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register adds a backend to the global registry. It is typically called
// from init functions of backend packages:
//
//	func init() {
//	    backend.Register("glfw", 100, newCanvas, available)
//	}
//
// If available is nil, the backend is assumed always available.
// Registering an existing name replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names, highest priority first.
func List() []string {
	return globalRegistry.List()
}

// Available returns the names of available backends, highest priority
// first.
func Available() []string {
	return globalRegistry.Available()
}

// Lookup returns a copy of the named entry from the global registry.
func Lookup(name string) (*Entry, bool) {
	return globalRegistry.Lookup(name)
}

// NewCanvas creates a canvas from the named backend of the global registry.
func NewCanvas(name string, cfg glcontext.Config) (Canvas, error) {
	return globalRegistry.NewCanvas(name, cfg)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &Entry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// Available returns names of available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(true)
}

// Lookup returns a copy of the named entry.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// NewCanvas creates a canvas from the named backend.
func (r *Registry) NewCanvas(name string, cfg glcontext.Config) (Canvas, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &UnavailableError{Name: name}
	}
	return entry.Factory(cfg)
}

// sortedNames returns backend names sorted by priority (highest first),
// then by name. Must be called with the lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
