// Package glcontext tracks OpenGL-style rendering contexts and which one is
// current.
//
// # Overview
//
// A [Context] stands for one native rendering context. It carries a
// validated [Config], may be taken once by a canvas backend, and may be
// made current. A [Registry] remembers the current context and keeps a
// spare untaken context so that callers asking for "a context to use"
// either reuse a free one or get a new one.
//
// # Quick Start
//
//	c := glcontext.ReusableContext()
//
//	h := glcontext.RegisterBackend(window) // window implements Backend
//	defer h.Release()
//
//	if err := c.Take("glfw", h); err != nil {
//		return err
//	}
//	if err := c.MakeCurrent(); err != nil {
//		return err
//	}
//
// # Backends
//
// A [Backend] needs a single method, MakeCurrent, which makes its native
// context current. Contexts never hold a backend directly: they hold a
// [BackendHandle] from a [HandleTable]. Once the backend is released every
// handle to it reports dead, and [Context.Backend] fails with
// [ErrBackendUnavailable] instead of returning a stale surface.
//
// Taking is permanent. A context whose backend was released stays taken
// and cannot be taken again.
//
// # Configuration
//
// Config options are validated against a fixed schema (buffer bit depths,
// double buffering, stereo, multisampling, color format) and every context
// owns an independent copy. Configs can also be loaded from TOML or YAML
// files with [LoadConfig].
//
// # Threads
//
// Native APIs bind the current context per OS thread while a Registry keeps
// a single current slot. Drive native backends from one locked OS thread.
//
// Windowing glue lives in the backend package and its subpackages.
package glcontext
