package glcontext

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrUnknownOption is returned when a config names an option outside
	// the recognized set.
	ErrUnknownOption = errors.New("glcontext: unknown config option")

	// ErrTypeMismatch is returned when a config value does not satisfy the
	// declared kind of its option.
	ErrTypeMismatch = errors.New("glcontext: config value has wrong type")

	// ErrUnsupportedFormat is returned by LoadConfig for files whose
	// extension does not name a known encoding.
	ErrUnsupportedFormat = errors.New("glcontext: unsupported config format")
)

// Association and activation errors.
var (
	// ErrAlreadyTaken is returned when Take is called on a context that was
	// already associated with a backend. A context can be taken once.
	ErrAlreadyTaken = errors.New("glcontext: context already taken")

	// ErrNotTaken is returned when the backend of a context that was never
	// taken is requested.
	ErrNotTaken = errors.New("glcontext: context not taken")

	// ErrBackendUnavailable is returned when a backend handle refers to a
	// backend that has been released.
	ErrBackendUnavailable = errors.New("glcontext: backend unavailable")

	// ErrNotReady is returned when activating a context that has no backend
	// and no override was supplied.
	ErrNotReady = errors.New("glcontext: context has no backend to make current")

	// ErrNoDevice is returned by DeviceProvider when the backend does not
	// expose a GPU device.
	ErrNoDevice = errors.New("glcontext: backend does not provide a GPU device")
)

// OptionError describes a rejected config entry. It wraps either
// ErrUnknownOption or ErrTypeMismatch.
type OptionError struct {
	Option string
	Value  any
	Err    error
}

func (e *OptionError) Error() string {
	if errors.Is(e.Err, ErrUnknownOption) {
		return fmt.Sprintf("%v: %q", e.Err, e.Option)
	}
	return fmt.Sprintf("%v: %s = %v (%T), want %s", e.Err, e.Option, e.Value, e.Value, optionKinds[e.Option])
}

func (e *OptionError) Unwrap() error {
	return e.Err
}
