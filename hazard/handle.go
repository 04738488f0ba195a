package hazard

import "sync/atomic"

// Handle is a scoped lease of one Cell in a Domain. Exactly one live
// Handle owns a given Cell at a time. The reference design's handles are
// move-only; Go has no move semantics, so Handle is instead non-copyable by
// convention — copying the struct duplicates the *Cell pointer, and calling
// Release through two copies would double-release the same cell. Release's
// guard flag lives in the struct, so it only makes repeated calls through
// the same *Handle a no-op; it does not catch release through a copy.
type Handle[T any] struct {
	domain   *Domain[T]
	cell     *Cell[T]
	released atomic.Bool
}

// NewHandle leases one cell from d. It returns ErrCellsExhausted when d has
// no free cell.
func NewHandle[T any](d *Domain[T]) (*Handle[T], error) {
	c, err := d.CaptureCell()
	if err != nil {
		return nil, err
	}
	return &Handle[T]{domain: d, cell: c}, nil
}

// MustNewHandle leases one cell from d, panicking on ErrCellsExhausted.
// Client containers that treat cell exhaustion as a fatal misconfiguration
// (rather than a condition they can meaningfully recover from) call this
// instead of NewHandle.
func MustNewHandle[T any](d *Domain[T]) *Handle[T] {
	h, err := NewHandle(d)
	if err != nil {
		panic(err)
	}
	return h
}

// Empty reports whether the handle's cell currently publishes no address.
func (h *Handle[T]) Empty() bool {
	return h.cell.ptr.Load() == nil
}

// Protect publishes successive values of src into the handle's cell until a
// stable read is confirmed: the returned pointer, if non-nil, was present
// in src at some instant while the cell contained it, so any concurrent
// retirer either observed the protection or retired the pointer only after
// it had already become unreachable from src.
func (h *Handle[T]) Protect(src *atomic.Pointer[T]) *T {
	if h.released.Load() {
		panic(ErrHandleReleased)
	}
	p := src.Load()
	for {
		h.cell.ptr.Store(p)
		next := src.Load()
		if next == p {
			return p
		}
		p = next
	}
}

// TryProtect is the single-shot variant of Protect for callers that already
// hold a candidate pointer from a prior load. It publishes candidate, then
// re-reads src. If they agree it returns (candidate, true). Otherwise it
// clears the cell back to nil and returns the freshly observed value along
// with false, for the caller to retry with.
func (h *Handle[T]) TryProtect(candidate *T, src *atomic.Pointer[T]) (*T, bool) {
	if h.released.Load() {
		panic(ErrHandleReleased)
	}
	h.cell.ptr.Store(candidate)
	observed := src.Load()
	if observed == candidate {
		return candidate, true
	}
	h.cell.ptr.Store(nil)
	return observed, false
}

// Reset publishes ptr (possibly nil) into the handle's cell. The handle
// keeps owning the cell; Reset(nil) simply stops protecting anything.
func (h *Handle[T]) Reset(ptr *T) {
	if h.released.Load() {
		panic(ErrHandleReleased)
	}
	h.cell.ptr.Store(ptr)
}

// Retire hands ptr to the domain's reclamation machinery through this
// handle's cell. The caller is responsible for ptr already being
// unreachable from the client structure's roots.
func (h *Handle[T]) Retire(ptr *T) {
	if h.released.Load() {
		panic(ErrHandleReleased)
	}
	h.domain.Retire(h.cell, ptr)
}

// Release publishes nil into the handle's cell and returns it to the
// domain's free pool. Release is idempotent: calling it more than once is
// a no-op after the first call.
func (h *Handle[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.domain.releaseCell(h.cell)
}
