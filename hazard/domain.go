package hazard

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the cell count a Domain uses when constructed with a
// non-positive capacity, matching the reference design's default of 128.
const DefaultCapacity = 128

// Finalizer is implemented by client node types that need deterministic
// teardown the instant a scan proves it safe to reclaim them. T's own Go
// garbage collector already reclaims the memory eventually; HazardFinalize
// exists for the cases spec'd as "nothrow destructor" in the reference
// design — returning pooled buffers, closing embedded resources, or simply
// making reclamation observable in tests.
type Finalizer interface {
	HazardFinalize()
}

// Cell is one protection slot of a Domain, together with the retire list
// that accumulates while this slot is (or was) leased. Cells are never
// reclaimed; their lifetime is the Domain's.
type Cell[T any] struct {
	ptr atomic.Pointer[T]

	// retired and threshold are touched only by the single goroutine
	// currently driving Retire/scan through this cell: the CAS in
	// CaptureCell happens-before every subsequent access, and the
	// release store in Handle.Release happens-before the next
	// successful capture, so no lock is needed here.
	retired   []*T
	threshold uint64
}

// DomainStats is a point-in-time snapshot of a Domain's bookkeeping
// counters. ScanCount, Retired and Reclaimed are monotonically
// non-decreasing for the lifetime of the Domain; CellsInUse and Carried are
// gauges.
type DomainStats struct {
	CellsInUse int
	ScanCount  uint64
	Retired    uint64
	Reclaimed  uint64
	Carried    uint64
}

// Domain is a registry of a fixed number of protection cells, shared by
// every Handle obtained from it. It has no notion of what T's fields mean;
// it only ever compares and stores *T values.
type Domain[T any] struct {
	cells    []Cell[T]
	sentinel *T

	leased    atomic.Int64
	scanCount atomic.Uint64
	retired   atomic.Uint64
	reclaimed atomic.Uint64
	carried   atomic.Uint64

	logger zerolog.Logger
}

// Option configures a Domain at construction time.
type Option[T any] func(*Domain[T])

// WithLogger attaches a structured logger the Domain uses for diagnostic
// events (scan summaries, cell exhaustion). Logging never affects
// correctness and defaults to a no-op logger.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(d *Domain[T]) {
		d.logger = logger
	}
}

// NewDomain constructs a Domain with the given cell capacity. A non-positive
// capacity is replaced with DefaultCapacity.
func NewDomain[T any](capacity int, opts ...Option[T]) *Domain[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	d := &Domain[T]{
		cells:    make([]Cell[T], capacity),
		sentinel: new(T),
		logger:   zerolog.Nop(),
	}
	for i := range d.cells {
		d.cells[i].threshold = uint64(capacity)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Capacity returns N, the number of cells this Domain was constructed with.
func (d *Domain[T]) Capacity() int {
	return len(d.cells)
}

// CaptureCell reserves a free cell by CAS from nil to a domain-private
// sentinel, scanning cells in order. It returns ErrCellsExhausted when all
// cells are already leased; this is a hard, documented bound — callers that
// need more concurrency must construct a Domain with a larger capacity.
func (d *Domain[T]) CaptureCell() (*Cell[T], error) {
	for i := range d.cells {
		c := &d.cells[i]
		if c.ptr.CompareAndSwap(nil, d.sentinel) {
			d.leased.Add(1)
			return c, nil
		}
	}
	d.logger.Warn().
		Int("capacity", len(d.cells)).
		Msg("hazard: cell capture failed, all cells leased")
	return nil, ErrCellsExhausted
}

func (d *Domain[T]) isSentinel(p *T) bool {
	return p == d.sentinel
}

func (d *Domain[T]) releaseCell(c *Cell[T]) {
	c.ptr.Store(nil)
	d.leased.Add(-1)
}

// Retire appends ptr to cell's retire list. ptr == nil is a no-op. Crossing
// the cell's current amortization threshold triggers a scan of that list
// against a snapshot of every cell in the domain.
func (d *Domain[T]) Retire(cell *Cell[T], ptr *T) {
	if ptr == nil {
		return
	}
	cell.retired = append(cell.retired, ptr)
	d.retired.Add(1)
	if uint64(len(cell.retired)) >= cell.threshold {
		d.scan(cell)
	}
}

// scan takes an acquire snapshot of every cell's published pointer and
// frees (drops the domain's last reference to, invoking Finalizer if T
// implements it) every entry in cell's retire list that the snapshot does
// not contain. Entries still present in the snapshot are kept for the next
// scan. Safe against concurrent publication: a publish observed only after
// the snapshot was taken cannot validly target an already-retired pointer,
// because retirement requires the pointer to be unreachable from the
// client structure's roots before it is ever passed to Retire.
func (d *Domain[T]) scan(cell *Cell[T]) {
	snapshot := make([]*T, len(d.cells))
	for i := range d.cells {
		snapshot[i] = d.cells[i].ptr.Load()
	}

	kept := cell.retired[:0]
	var freed uint64
	for _, p := range cell.retired {
		if containsPointer(snapshot, p) {
			kept = append(kept, p)
			continue
		}
		reclaim(p)
		freed++
	}
	cell.retired = kept
	cell.threshold = nextThreshold(cell.threshold, len(d.cells))

	d.scanCount.Add(1)
	d.reclaimed.Add(freed)
	d.carried.Store(uint64(len(kept)))

	d.logger.Debug().
		Uint64("scan", d.scanCount.Load()).
		Uint64("freed", freed).
		Int("carried", len(kept)).
		Msg("hazard: scan complete")
}

// nextThreshold doubles the amortization threshold, capped at 32*N, per the
// reference design's scan-fairness policy.
func nextThreshold(current uint64, capacity int) uint64 {
	capped := uint64(32 * capacity)
	next := current * 2
	if next > capped || next < current /* overflow */ {
		return capped
	}
	return next
}

func containsPointer[T any](haystack []*T, needle *T) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}

func reclaim[T any](p *T) {
	if f, ok := any(p).(Finalizer); ok {
		f.HazardFinalize()
	}
}

// DeleteAll clears every cell and force-drains every retire list,
// finalizing every retired pointer regardless of whether a (now presumably
// dead) handle still appears to protect it. It is diagnostic only: not
// concurrency-safe, intended for test teardown via t.Cleanup.
func (d *Domain[T]) DeleteAll() {
	for i := range d.cells {
		c := &d.cells[i]
		c.ptr.Store(nil)
		for _, p := range c.retired {
			reclaim(p)
			d.reclaimed.Add(1)
		}
		c.retired = nil
		c.threshold = uint64(len(d.cells))
	}
	d.leased.Store(0)
	d.carried.Store(0)
}

// Stats returns a point-in-time snapshot of the domain's bookkeeping
// counters.
func (d *Domain[T]) Stats() DomainStats {
	return DomainStats{
		CellsInUse: int(d.leased.Load()),
		ScanCount:  d.scanCount.Load(),
		Retired:    d.retired.Load(),
		Reclaimed:  d.reclaimed.Load(),
		Carried:    d.carried.Load(),
	}
}
