// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides a canvas backend without a native window.
//
// A headless Canvas never talks to a graphics driver. It records
// activations, which makes it useful in tests and as the stand-in surface
// when a context must be current before any window exists. It also
// satisfies gpucontext.DeviceProvider with a null device, reporting the
// configured color format as its surface format.
//
// Importing the package registers it under the name "headless".
package headless

import (
	"sync"

	"github.com/gogpu/glcontext"
	"github.com/gogpu/glcontext/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Name is the backend identifier.
const Name = "headless"

func init() {
	backend.Register(Name, 10, func(cfg glcontext.Config) (backend.Canvas, error) {
		return New(cfg), nil
	}, nil)
}

// Canvas is a surface with no native context.
// It is safe for concurrent use.
type Canvas struct {
	format gputypes.TextureFormat

	mu          sync.Mutex
	activations int
	detaches    int
	closed      bool
}

// New creates a headless canvas for cfg. A nil cfg uses the defaults.
func New(cfg glcontext.Config) *Canvas {
	if cfg == nil {
		cfg = glcontext.DefaultConfig()
	}
	return &Canvas{format: cfg.ColorFormat()}
}

// Name returns "headless".
func (c *Canvas) Name() string { return Name }

// MakeCurrent records an activation. It fails with backend.ErrClosed after
// Close.
func (c *Canvas) MakeCurrent() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return backend.ErrClosed
	}
	c.activations++
	return nil
}

// DetachCurrent records a deactivation.
func (c *Canvas) DetachCurrent() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detaches++
	return nil
}

// Close marks the canvas closed. Closing twice is a no-op.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Activations returns how many times MakeCurrent succeeded.
func (c *Canvas) Activations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activations
}

// Detaches returns how many times DetachCurrent was called.
func (c *Canvas) Detaches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detaches
}

// Closed reports whether Close was called.
func (c *Canvas) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Device returns nil: there is no GPU device.
func (*Canvas) Device() gpucontext.Device { return nil }

// Queue returns nil.
func (*Canvas) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (*Canvas) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports an unknown adapter named after the backend.
func (*Canvas) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: Name, Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns the color_format the canvas was configured with.
func (c *Canvas) SurfaceFormat() gputypes.TextureFormat { return c.format }

var (
	_ backend.Canvas            = (*Canvas)(nil)
	_ glcontext.Detacher        = (*Canvas)(nil)
	_ gpucontext.DeviceProvider = (*Canvas)(nil)
)
