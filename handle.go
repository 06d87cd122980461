package glcontext

import (
	"fmt"
	"sync"
)

// Backend is the canvas surface a context is bound to. MakeCurrent asks the
// surface to make its native context current on the calling thread and
// reports failure if the surface is no longer valid.
type Backend interface {
	MakeCurrent() error
}

// Detacher is implemented by backends that can release the native current
// context. Context.SetCurrent calls it when the context is deactivated.
type Detacher interface {
	DetachCurrent() error
}

// HandleTable holds backends on behalf of contexts. Contexts refer to a
// backend through a BackendHandle; releasing the backend drops the table's
// reference and invalidates every handle to it.
//
// A HandleTable is safe for concurrent use.
type HandleTable struct {
	mu    sync.RWMutex
	slots []handleSlot
	free  []uint32
}

type handleSlot struct {
	backend    Backend
	generation uint32
}

// defaultTable backs RegisterBackend and ReleaseBackend.
var defaultTable = &HandleTable{}

// DefaultHandleTable returns the table used by RegisterBackend.
func DefaultHandleTable() *HandleTable {
	return defaultTable
}

// NewHandleTable creates an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{}
}

// Register stores b and returns a handle to it. A nil backend yields the
// zero handle.
func (t *HandleTable) Register(b Backend) BackendHandle {
	if b == nil {
		return BackendHandle{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		// Generation 0 is reserved for the zero handle.
		t.slots = append(t.slots, handleSlot{generation: 1})
		index = uint32(len(t.slots) - 1)
	}
	t.slots[index].backend = b
	return BackendHandle{table: t, index: index, generation: t.slots[index].generation}
}

// Release drops the backend referenced by h. Every handle to it stops being
// alive. Releasing a dead handle is a no-op.
func (t *HandleTable) Release(h BackendHandle) {
	if h.table != t {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.validLocked(h) {
		return
	}
	s := &t.slots[h.index]
	s.backend = nil
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	t.free = append(t.free, h.index)
}

// Len returns the number of live backends.
func (t *HandleTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots) - len(t.free)
}

func (t *HandleTable) lookup(h BackendHandle) (Backend, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.validLocked(h) {
		return nil, false
	}
	return t.slots[h.index].backend, true
}

func (t *HandleTable) validLocked(h BackendHandle) bool {
	return int(h.index) < len(t.slots) &&
		t.slots[h.index].generation == h.generation &&
		t.slots[h.index].backend != nil
}

// RegisterBackend stores b in the default table.
func RegisterBackend(b Backend) BackendHandle {
	return defaultTable.Register(b)
}

// ReleaseBackend releases h from the table it was issued by.
func ReleaseBackend(h BackendHandle) {
	if h.table != nil {
		h.table.Release(h)
	}
}

// BackendHandle refers to a backend without keeping it alive. Liveness is
// checked on every access. The zero BackendHandle is never alive.
type BackendHandle struct {
	table      *HandleTable
	index      uint32
	generation uint32
}

// IsAlive reports whether the referenced backend has not been released.
func (h BackendHandle) IsAlive() bool {
	_, err := h.Get()
	return err == nil
}

// Get returns the referenced backend, or ErrBackendUnavailable if it has
// been released.
func (h BackendHandle) Get() (Backend, error) {
	if h.table == nil {
		return nil, ErrBackendUnavailable
	}
	b, ok := h.table.lookup(h)
	if !ok {
		return nil, ErrBackendUnavailable
	}
	return b, nil
}

// Release releases the referenced backend. It is shorthand for
// ReleaseBackend(h).
func (h BackendHandle) Release() {
	ReleaseBackend(h)
}

func (h BackendHandle) String() string {
	if h.table == nil {
		return "BackendHandle(nil)"
	}
	return fmt.Sprintf("BackendHandle(%d#%d)", h.index, h.generation)
}
