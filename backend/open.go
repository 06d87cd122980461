package backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/glcontext"
)

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	context  *glcontext.Context
	contexts *glcontext.Registry
	handles  *glcontext.HandleTable
}

// WithContext opens the canvas for c instead of a spare context.
// c must not be taken yet.
func WithContext(c *glcontext.Context) OpenOption {
	return func(o *openOptions) {
		o.context = c
	}
}

// WithContextRegistry draws the spare context from r instead of the
// process-wide registry.
func WithContextRegistry(r *glcontext.Registry) OpenOption {
	return func(o *openOptions) {
		o.contexts = r
	}
}

// WithHandleTable registers the canvas in t instead of the default table.
func WithHandleTable(t *glcontext.HandleTable) OpenOption {
	return func(o *openOptions) {
		o.handles = t
	}
}

// Surface is a canvas bound to the context it took. It is safe for
// concurrent use.
type Surface struct {
	context *glcontext.Context
	canvas  Canvas
	handle  glcontext.BackendHandle
	handles *glcontext.HandleTable

	mu     sync.Mutex
	closed bool
}

// Context returns the context the canvas took.
func (s *Surface) Context() *glcontext.Context { return s.context }

// Canvas returns the underlying canvas.
func (s *Surface) Canvas() Canvas { return s.canvas }

// Handle returns the handle the context holds to the canvas.
func (s *Surface) Handle() glcontext.BackendHandle { return s.handle }

// Close deactivates the context, closes the canvas and releases its
// handle. The context stays taken; its Backend reports
// glcontext.ErrBackendUnavailable afterwards.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	errDeactivate := s.context.Deactivate()
	errClose := s.canvas.Close()
	s.handles.Release(s.handle)
	return errors.Join(errDeactivate, errClose)
}

// Open creates a canvas from the named backend of the global registry and
// hands it a context: a spare context is taken with the backend name and
// made current.
//
//	s, err := backend.Open("headless")
//	if err != nil {
//		return err
//	}
//	defer s.Close()
func Open(name string, opts ...OpenOption) (*Surface, error) {
	return globalRegistry.Open(name, opts...)
}

// OpenDefault is like Open with the best available backend.
func OpenDefault(opts ...OpenOption) (*Surface, error) {
	return globalRegistry.OpenDefault(opts...)
}

// Open creates a canvas from the named backend of r. See the package-level
// Open.
func (r *Registry) Open(name string, opts ...OpenOption) (*Surface, error) {
	o := resolveOptions(opts)
	ctx, err := o.target()
	if err != nil {
		return nil, err
	}
	canvas, err := r.NewCanvas(name, ctx.Config())
	if err != nil {
		return nil, err
	}
	return bind(ctx, canvas, o)
}

// OpenDefault opens the best available backend of r. A backend whose canvas
// cannot be created or activated is skipped for the next one.
func (r *Registry) OpenDefault(opts ...OpenOption) (*Surface, error) {
	o := resolveOptions(opts)
	ctx, err := o.target()
	if err != nil {
		return nil, err
	}

	names := r.Available()
	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var errs []error
	for _, name := range names {
		canvas, err := r.NewCanvas(name, ctx.Config())
		if err == nil {
			var s *Surface
			if s, err = bind(ctx, canvas, o); err == nil {
				return s, nil
			}
		}
		glcontext.Logger().Debug("backend: open failed", "backend", name, "err", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func resolveOptions(opts []OpenOption) openOptions {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.contexts == nil {
		o.contexts = glcontext.Default()
	}
	if o.handles == nil {
		o.handles = glcontext.DefaultHandleTable()
	}
	return o
}

func (o openOptions) target() (*glcontext.Context, error) {
	if o.context == nil {
		return o.contexts.ReusableContext(), nil
	}
	if o.context.IsTaken() {
		return nil, fmt.Errorf("backend: open: %w: %v", glcontext.ErrAlreadyTaken, o.context)
	}
	return o.context, nil
}

// bind activates ctx through canvas and then takes it. The context is only
// taken once activation succeeded; on failure the canvas is closed and
// released and ctx stays untaken.
func bind(ctx *glcontext.Context, canvas Canvas, o openOptions) (*Surface, error) {
	h := o.handles.Register(canvas)
	fail := func(err error) (*Surface, error) {
		o.handles.Release(h)
		return nil, errors.Join(err, canvas.Close())
	}

	if err := ctx.SetCurrent(true, canvas); err != nil {
		return fail(fmt.Errorf("backend: open %s: %w", canvas.Name(), err))
	}
	if err := ctx.Take(canvas.Name(), h); err != nil {
		// Lost a race with another Take.
		return fail(fmt.Errorf("backend: open %s: %w", canvas.Name(), err))
	}

	glcontext.Logger().Debug("backend: canvas opened", "backend", canvas.Name(), "context", ctx.String())
	return &Surface{
		context: ctx,
		canvas:  canvas,
		handle:  h,
		handles: o.handles,
	}, nil
}
