package glcontext

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
)

// Context is the logical handle to one native rendering context.
//
// A Context is taken at most once: Take binds it to a backend for the rest
// of its life, and a released backend does not free it for another Take.
// Independently, SetCurrent toggles whether the Context is the one its
// Registry designates as current.
type Context struct {
	registry *Registry
	config   Config

	// mu guards the association fields so that Take is check-then-set
	// atomic.
	mu         sync.Mutex
	taken      bool
	identifier string
	handle     BackendHandle
}

// New creates an untaken Context bound to the default registry. The config
// is validated with ValidateConfig; nil selects the defaults.
func New(config map[string]any) (*Context, error) {
	return Default().NewContext(config)
}

// MustNew is like New but panics on an invalid config.
func MustNew(config map[string]any) *Context {
	c, err := New(config)
	if err != nil {
		panic(err)
	}
	return c
}

func newContext(r *Registry, config map[string]any) (*Context, error) {
	cfg, err := ValidateConfig(config)
	if err != nil {
		return nil, err
	}
	return &Context{registry: r, config: cfg}, nil
}

// Config returns the context's configuration. The map belongs to this
// context: changing it affects neither the defaults nor other contexts.
func (c *Context) Config() Config {
	return c.config
}

// Registry returns the registry that tracks this context.
func (c *Context) Registry() *Registry {
	return c.registry
}

// IsTaken reports whether the context was ever associated with a backend,
// whether or not that backend is still alive.
func (c *Context) IsTaken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.taken
}

// Identifier returns the identifier given to Take, or "" if untaken.
func (c *Context) Identifier() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identifier
}

// Backend returns the backend the context was taken by. It fails with
// ErrNotTaken if the context was never taken and with ErrBackendUnavailable
// if the backend has been released.
func (c *Context) Backend() (Backend, error) {
	c.mu.Lock()
	taken, h := c.taken, c.handle
	c.mu.Unlock()

	if !taken {
		return nil, ErrNotTaken
	}
	return h.Get()
}

// Take associates the context with the backend behind h. identifier names
// the backend in diagnostics.
//
// Take fails with ErrAlreadyTaken if the context was taken before, even if
// that backend has since been released. A dead handle is rejected with
// ErrBackendUnavailable and leaves the context untaken.
func (c *Context) Take(identifier string, h BackendHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.taken {
		return fmt.Errorf("%w: %s", ErrAlreadyTaken, c.describeLocked())
	}
	if !h.IsAlive() {
		return ErrBackendUnavailable
	}
	c.taken = true
	c.identifier = identifier
	c.handle = h

	Logger().Debug("glcontext: context taken", "backend", identifier, "handle", h)
	return nil
}

// IsCurrent reports whether the context's registry designates it as the
// current context.
func (c *Context) IsCurrent() bool {
	return c.registry.isCurrent(c)
}

// SetCurrent activates or deactivates the context.
//
// To activate, the context needs a backend: its own if it was taken,
// otherwise override. With neither, SetCurrent fails with ErrNotReady. The
// backend's MakeCurrent is called and, if it succeeds, the context becomes
// the registry's current context, replacing any other. The override is used
// for this call only and does not take the context.
//
// To deactivate, the context is removed from the registry's current slot if
// it holds it, and a backend implementing Detacher is asked to release the
// native context.
func (c *Context) SetCurrent(activate bool, override Backend) error {
	if !activate {
		return c.deactivate()
	}

	b, err := c.activationBackend(override)
	if err != nil {
		return err
	}
	if err := b.MakeCurrent(); err != nil {
		return fmt.Errorf("glcontext: make %v current: %w", c, err)
	}
	prev := c.registry.setCurrent(c)

	Logger().Debug("glcontext: context made current",
		"context", c.String(), "replaced", prev != nil && prev != c)
	return nil
}

// MakeCurrent activates the context with its own backend.
func (c *Context) MakeCurrent() error {
	return c.SetCurrent(true, nil)
}

// Deactivate clears the context's current state.
func (c *Context) Deactivate() error {
	return c.SetCurrent(false, nil)
}

func (c *Context) activationBackend(override Backend) (Backend, error) {
	c.mu.Lock()
	taken, h := c.taken, c.handle
	c.mu.Unlock()

	if taken {
		return h.Get()
	}
	if override == nil {
		return nil, ErrNotReady
	}
	return override, nil
}

func (c *Context) deactivate() error {
	if !c.registry.clearCurrent(c) {
		return nil
	}

	b, err := c.Backend()
	if err != nil {
		// Nothing native left to detach.
		return nil
	}
	d, ok := b.(Detacher)
	if !ok {
		return nil
	}
	if err := d.DetachCurrent(); err != nil {
		Logger().Warn("glcontext: backend failed to detach", "context", c.String(), "err", err)
		return fmt.Errorf("glcontext: detach %v: %w", c, err)
	}
	return nil
}

// DeviceProvider returns the taken backend as a gpucontext.DeviceProvider.
// It fails with ErrNoDevice if the backend does not implement it.
func (c *Context) DeviceProvider() (gpucontext.DeviceProvider, error) {
	b, err := c.Backend()
	if err != nil {
		return nil, err
	}
	dp, ok := b.(gpucontext.DeviceProvider)
	if !ok {
		return nil, ErrNoDevice
	}
	return dp, nil
}

// String describes the backend association, e.g.
// "<glcontext.Context with no backend>".
func (c *Context) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.describeLocked()
}

func (c *Context) describeLocked() string {
	if !c.taken {
		return "<glcontext.Context with no backend>"
	}
	if !c.handle.IsAlive() {
		return fmt.Sprintf("<glcontext.Context with %s backend (released)>", c.identifier)
	}
	return fmt.Sprintf("<glcontext.Context with %s backend>", c.identifier)
}
