package glcontext

// NullBackend is a stand-in surface with no native context. Passing it as
// the override to SetCurrent lets an untaken context become current, e.g.
// while querying the first context before any window exists.
type NullBackend struct{}

// MakeCurrent does nothing.
func (NullBackend) MakeCurrent() error { return nil }

// Ensure NullBackend implements Backend.
var _ Backend = NullBackend{}
