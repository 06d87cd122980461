package glcontext

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend counts the calls a context makes on it.
type recordingBackend struct {
	current  int
	detached int
	err      error
}

func (b *recordingBackend) MakeCurrent() error {
	if b.err != nil {
		return b.err
	}
	b.current++
	return nil
}

// detachingBackend also releases its native context on deactivation.
type detachingBackend struct {
	recordingBackend
	detachErr error
}

func (b *detachingBackend) DetachCurrent() error {
	b.detached++
	return b.detachErr
}

// deviceBackend exposes a GPU device like a gogpu window would.
type deviceBackend struct {
	recordingBackend
}

func (deviceBackend) Device() gpucontext.Device   { return nil }
func (deviceBackend) Queue() gpucontext.Queue     { return nil }
func (deviceBackend) Adapter() gpucontext.Adapter { return nil }
func (deviceBackend) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "test", Type: gpucontext.AdapterTypeDiscrete}
}
func (deviceBackend) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func TestContextConfig(t *testing.T) {
	r := NewRegistry()
	defaults := DefaultConfig()

	// Passing the defaults unchanged.
	c, err := r.NewContext(defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, c.Config())
	c.Config()[OptionDoubleBuffer] = false
	assert.NotEqual(t, defaults, c.Config())
	assert.Equal(t, true, defaults[OptionDoubleBuffer])

	// Passing nothing yields the defaults.
	c, err = r.NewContext(nil)
	require.NoError(t, err)
	assert.Equal(t, defaults, c.Config())
	c.Config()[OptionDoubleBuffer] = false
	assert.NotEqual(t, defaults, c.Config())
	assert.Equal(t, DefaultConfig(), defaults)

	// Contexts never share their config.
	c1, _ := r.NewContext(nil)
	c2, _ := r.NewContext(nil)
	c1.Config()[OptionSamples] = 4
	assert.Equal(t, 0, c2.Config()[OptionSamples])

	c, err = r.NewContext(map[string]any{OptionRedSize: 4, OptionDoubleBuffer: false})
	require.NoError(t, err)
	assert.Len(t, c.Config(), len(defaults))

	_, err = r.NewContext(map[string]any{"foo": 3})
	assert.ErrorIs(t, err, ErrUnknownOption)
	_, err = r.NewContext(map[string]any{OptionDoubleBuffer: "not_bool"})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNewBindsDefaultRegistry(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Same(t, Default(), c.Registry())
	assert.Same(t, Default(), MustNew(nil).Registry())
	assert.Panics(t, func() { MustNew(map[string]any{"foo": 3}) })
}

func TestContextTaking(t *testing.T) {
	table := NewHandleTable()
	c, err := NewRegistry().NewContext(nil)
	require.NoError(t, err)

	// Untaken: no backend.
	assert.False(t, c.IsTaken())
	_, err = c.Backend()
	assert.ErrorIs(t, err, ErrNotTaken)
	assert.Contains(t, c.String(), "no backend")
	assert.Empty(t, c.Identifier())

	cb := &recordingBackend{}
	h := table.Register(cb)
	require.NoError(t, c.Take("test-foo", h))
	assert.True(t, c.IsTaken())
	got, err := c.Backend()
	require.NoError(t, err)
	assert.Same(t, cb, got)
	assert.Contains(t, c.String(), "test-foo backend")
	assert.Equal(t, "test-foo", c.Identifier())

	// Cannot take it again.
	err = c.Take("test", table.Register(&recordingBackend{}))
	assert.ErrorIs(t, err, ErrAlreadyTaken)

	// The backend goes away.
	table.Release(h)

	// Still taken, and the dead backend is reported, not returned.
	err = c.Take("test", table.Register(&recordingBackend{}))
	assert.ErrorIs(t, err, ErrAlreadyTaken)
	_, err = c.Backend()
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.NotErrorIs(t, err, ErrNotTaken)
	assert.True(t, c.IsTaken())
	assert.Contains(t, c.String(), "test-foo backend (released)")
}

func TestTakeRejectsDeadHandle(t *testing.T) {
	table := NewHandleTable()
	c, _ := NewRegistry().NewContext(nil)

	h := table.Register(&recordingBackend{})
	table.Release(h)

	assert.ErrorIs(t, c.Take("dead", h), ErrBackendUnavailable)
	assert.False(t, c.IsTaken())
	assert.ErrorIs(t, c.Take("zero", BackendHandle{}), ErrBackendUnavailable)

	require.NoError(t, c.Take("live", table.Register(&recordingBackend{})))
}

func TestTakeConcurrentSingleWinner(t *testing.T) {
	table := NewHandleTable()
	c, _ := NewRegistry().NewContext(nil)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Take("racer", table.Register(&recordingBackend{}))
			switch {
			case err == nil:
				wins.Add(1)
			case !errors.Is(err, ErrAlreadyTaken):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestContextActivating(t *testing.T) {
	r := NewRegistry()
	table := NewHandleTable()

	c1, _ := r.NewContext(nil)
	c2, _ := r.NewContext(nil)
	assert.Nil(t, r.CurrentContext())

	// A backend is needed to become current.
	assert.ErrorIs(t, c1.MakeCurrent(), ErrNotReady)
	assert.Nil(t, r.CurrentContext())
	assert.False(t, c1.IsCurrent())

	// Unless a stand-in is supplied.
	require.NoError(t, c1.SetCurrent(true, NullBackend{}))
	assert.Same(t, c1, r.CurrentContext())
	assert.True(t, c1.IsCurrent())
	assert.False(t, c1.IsTaken(), "the override must not take the context")

	// Switch.
	stand := &recordingBackend{}
	require.NoError(t, c2.SetCurrent(true, stand))
	assert.Equal(t, 1, stand.current)
	assert.Same(t, c2, r.CurrentContext())
	assert.True(t, c2.IsCurrent())
	assert.False(t, c1.IsCurrent())

	// Now with a real backend.
	cb1 := &recordingBackend{}
	require.NoError(t, c1.Take("test", table.Register(cb1)))
	assert.Zero(t, cb1.current)
	assert.Same(t, c2, r.CurrentContext())

	require.NoError(t, c1.MakeCurrent())
	assert.Same(t, c1, r.CurrentContext())
	assert.Equal(t, 1, cb1.current)
	assert.True(t, c1.IsCurrent())
	assert.False(t, c2.IsCurrent())
}

func TestSetCurrentPrefersTakenBackend(t *testing.T) {
	table := NewHandleTable()
	c, _ := NewRegistry().NewContext(nil)

	own := &recordingBackend{}
	h := table.Register(own)
	require.NoError(t, c.Take("own", h))

	other := &recordingBackend{}
	require.NoError(t, c.SetCurrent(true, other))
	assert.Equal(t, 1, own.current)
	assert.Zero(t, other.current)

	// A released backend cannot be replaced by an override.
	table.Release(h)
	assert.ErrorIs(t, c.SetCurrent(true, other), ErrBackendUnavailable)
	assert.Zero(t, other.current)
}

func TestSetCurrentBackendFailure(t *testing.T) {
	r := NewRegistry()
	table := NewHandleTable()

	prev, _ := r.NewContext(nil)
	require.NoError(t, prev.SetCurrent(true, NullBackend{}))

	surfaceErr := errors.New("surface destroyed")
	c, _ := r.NewContext(nil)
	require.NoError(t, c.Take("broken", table.Register(&recordingBackend{err: surfaceErr})))

	err := c.MakeCurrent()
	assert.ErrorIs(t, err, surfaceErr)
	assert.Same(t, prev, r.CurrentContext(), "a failed activation must not change the current context")
	assert.False(t, c.IsCurrent())
}

func TestDeactivate(t *testing.T) {
	r := NewRegistry()
	table := NewHandleTable()

	c, _ := r.NewContext(nil)
	b := &detachingBackend{}
	require.NoError(t, c.Take("detach", table.Register(b)))
	require.NoError(t, c.MakeCurrent())

	require.NoError(t, c.Deactivate())
	assert.False(t, c.IsCurrent())
	assert.Nil(t, r.CurrentContext())
	assert.Equal(t, 1, b.detached)

	// Deactivating an inactive context does nothing.
	require.NoError(t, c.Deactivate())
	assert.Equal(t, 1, b.detached)

	// Deactivating a non-current context leaves the current one alone.
	other, _ := r.NewContext(nil)
	require.NoError(t, other.SetCurrent(true, NullBackend{}))
	require.NoError(t, c.SetCurrent(false, nil))
	assert.Same(t, other, r.CurrentContext())
}

func TestDeactivateDetachFailure(t *testing.T) {
	r := NewRegistry()
	table := NewHandleTable()

	detachErr := errors.New("no display")
	c, _ := r.NewContext(nil)
	require.NoError(t, c.Take("detach", table.Register(&detachingBackend{detachErr: detachErr})))
	require.NoError(t, c.MakeCurrent())

	err := c.Deactivate()
	assert.ErrorIs(t, err, detachErr)
	assert.Nil(t, r.CurrentContext(), "the slot is cleared even if detaching fails")
}

func TestDeactivateReleasedBackend(t *testing.T) {
	r := NewRegistry()
	table := NewHandleTable()

	c, _ := r.NewContext(nil)
	b := &detachingBackend{}
	h := table.Register(b)
	require.NoError(t, c.Take("gone", h))
	require.NoError(t, c.MakeCurrent())

	table.Release(h)
	require.NoError(t, c.Deactivate())
	assert.Nil(t, r.CurrentContext())
	assert.Zero(t, b.detached)
}

func TestAtMostOneCurrent(t *testing.T) {
	r := NewRegistry()
	contexts := make([]*Context, 5)
	for i := range contexts {
		contexts[i], _ = r.NewContext(nil)
	}

	for _, active := range contexts {
		require.NoError(t, active.SetCurrent(true, NullBackend{}))
		n := 0
		for _, c := range contexts {
			if c.IsCurrent() {
				n++
				assert.Same(t, active, c)
			}
		}
		assert.Equal(t, 1, n)
	}
}

func TestContextDeviceProvider(t *testing.T) {
	table := NewHandleTable()
	r := NewRegistry()

	c, _ := r.NewContext(nil)
	_, err := c.DeviceProvider()
	assert.ErrorIs(t, err, ErrNotTaken)

	require.NoError(t, c.Take("plain", table.Register(&recordingBackend{})))
	_, err = c.DeviceProvider()
	assert.ErrorIs(t, err, ErrNoDevice)

	c, _ = r.NewContext(nil)
	require.NoError(t, c.Take("gpu", table.Register(&deviceBackend{})))
	dp, err := c.DeviceProvider()
	require.NoError(t, err)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, dp.SurfaceFormat())
	assert.Equal(t, gpucontext.AdapterTypeDiscrete, dp.AdapterInfo().Type)
}

var _ gpucontext.DeviceProvider = deviceBackend{}
