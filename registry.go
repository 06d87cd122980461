package glcontext

import (
	"fmt"
	"strings"
	"sync"
)

// Registry tracks the current context and a spare untaken context.
//
// Native graphics APIs keep one current context per OS thread; a Registry
// keeps one per registry. Programs driving native backends should make
// contexts current from a single locked OS thread.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	current *Context
	spare   *Context
}

// NewRegistry creates an empty registry. Most code uses the process-wide
// registry returned by Default.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	return defaultRegistry()
}

// CurrentContext returns the current context, or nil if none is active.
func (r *Registry) CurrentContext() *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ReusableContext returns the spare context if it is still untaken.
// Otherwise it allocates a new default-configured spare and returns that.
func (r *Registry) ReusableContext() *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reusableLocked()
}

func (r *Registry) reusableLocked() *Context {
	if r.spare != nil && !r.spare.IsTaken() {
		return r.spare
	}
	// The default config always validates.
	c, _ := newContext(r, nil)
	r.spare = c
	Logger().Debug("glcontext: spare context allocated")
	return c
}

// AnyContext returns the current context if one is active, and otherwise
// the result of ReusableContext.
func (r *Registry) AnyContext() *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return r.current
	}
	return r.reusableLocked()
}

// NewContext creates a context bound to r without touching the spare slot.
func (r *Registry) NewContext(config map[string]any) (*Context, error) {
	return newContext(r, config)
}

// Reset clears the current and spare slots.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	r.spare = nil
}

// Status describes the registry slots for diagnostics.
func (r *Registry) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "current: %s\n", describeSlot(r.current))
	fmt.Fprintf(&b, "spare: %s", describeSlot(r.spare))
	return b.String()
}

func describeSlot(c *Context) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

func (r *Registry) isCurrent(c *Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current == c
}

// setCurrent designates c as current and returns the previous one.
func (r *Registry) setCurrent(c *Context) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.current
	r.current = c
	return prev
}

// clearCurrent empties the current slot if c holds it.
func (r *Registry) clearCurrent(c *Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != c {
		return false
	}
	r.current = nil
	return true
}

// CurrentContext returns the current context of the default registry.
func CurrentContext() *Context {
	return Default().CurrentContext()
}

// ReusableContext returns a spare context from the default registry.
func ReusableContext() *Context {
	return Default().ReusableContext()
}

// AnyContext returns the default registry's current context or a spare.
func AnyContext() *Context {
	return Default().AnyContext()
}

// NewContext creates a context bound to the default registry.
func NewContext(config map[string]any) (*Context, error) {
	return Default().NewContext(config)
}

// Reset clears the default registry.
func Reset() {
	Default().Reset()
}
