package backend

import (
	"errors"

	"github.com/gogpu/glcontext"
)

// Common backend errors.
var (
	// ErrNoBackendAvailable is returned when no canvas backend is registered
	// or none of them is available on this system.
	ErrNoBackendAvailable = errors.New("backend: no canvas backend available")

	// ErrClosed is returned by canvas operations after Close.
	ErrClosed = errors.New("backend: canvas closed")
)

// Canvas is a platform surface that owns a native rendering context.
// It is the glcontext.Backend a context is taken by.
type Canvas interface {
	glcontext.Backend

	// Name returns the backend identifier (e.g., "headless", "glfw").
	Name() string

	// Close destroys the surface and its native context.
	Close() error
}

// Factory creates a canvas whose native context honours cfg.
type Factory func(cfg glcontext.Config) (Canvas, error)

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "backend: not found: " + e.Name
}

// UnavailableError indicates a backend is registered but cannot run on
// this system.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "backend: unavailable: " + e.Name
}
