package queue

import (
	"sync/atomic"

	"github.com/hazardconc/smr/hazard"
)

// DefaultCapacity is the hazard domain cell count a Queue uses when
// constructed with no options.
const DefaultCapacity = hazard.DefaultCapacity

// Option configures a Queue at construction time.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity sets the number of concurrent hazard cells the queue's
// domain supports. Dequeue leases two cells per call in flight, so the
// domain must be sized at least 2x the number of concurrent dequeuers.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// Queue is a Michael-Scott unbounded lock-free FIFO queue. head always
// points at a sentinel node whose value is never returned; the value is
// taken from head.next on a successful dequeue, and that node becomes the
// new sentinel (its value field is not cleared until it is reclaimed).
type Queue[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   atomic.Pointer[node[T]]
	count  atomic.Int64
	domain *hazard.Domain[node[T]]
}

// New returns an empty Queue.
func New[T any](opts ...Option) *Queue[T] {
	cfg := config{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	q := &Queue[T]{domain: hazard.NewDomain[node[T]](cfg.capacity)}
	sentinel := &node[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Size returns the number of values currently in the queue.
func (q *Queue[T]) Size() int {
	return int(q.count.Load())
}

// Enqueue puts v at the tail of the queue.
func (q *Queue[T]) Enqueue(v T) {
	fresh := &node[T]{value: v}

	h := hazard.MustNewHandle(q.domain)
	defer h.Release()

	for {
		tail := h.Protect(&q.tail)
		next := tail.next.Load()
		if next != nil {
			// Tail lagged behind a prior enqueue that linked but hadn't
			// yet swung tail forward; help it along and retry.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, fresh) {
			q.tail.CompareAndSwap(tail, fresh) // best effort; a failure here is fixed by the next Enqueue or Dequeue
			q.count.Add(1)
			return
		}
	}
}

// Dequeue removes and returns the value at the head of the queue. It
// reports false if the queue is empty.
func (q *Queue[T]) Dequeue() (v T, ok bool) {
	hHead := hazard.MustNewHandle(q.domain)
	defer hHead.Release()
	hNext := hazard.MustNewHandle(q.domain)
	defer hNext.Release()

	for {
		head := hHead.Protect(&q.head)
		tail := q.tail.Load()
		next := hNext.Protect(&head.next)

		if head != q.head.Load() {
			continue
		}

		if head == tail {
			if next == nil {
				var zero T
				return zero, false
			}
			// tail is lagging one behind; help it catch up and retry.
			q.tail.CompareAndSwap(tail, next)
			continue
		}

		if next == nil {
			continue
		}

		value := next.value
		if q.head.CompareAndSwap(head, next) {
			hHead.Reset(nil)
			hNext.Reset(nil)
			q.count.Add(-1)
			hHead.Retire(head)
			return value, true
		}
	}
}

// Stats exposes the backing hazard domain's reclamation bookkeeping, for
// diagnostics and tests.
func (q *Queue[T]) Stats() hazard.DomainStats {
	return q.domain.Stats()
}
