package stack

import (
	"sync/atomic"

	"github.com/hazardconc/smr/hazard"
)

// DefaultCapacity is the hazard domain cell count a Stack uses when
// constructed with no options.
const DefaultCapacity = hazard.DefaultCapacity

// Option configures a Stack at construction time.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity sets the number of concurrent hazard cells the stack's
// domain supports, i.e. the maximum number of goroutines that may hold a
// Pop in flight at once.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// Stack is an unbounded lock-free LIFO stack safe for any number of
// concurrent Push/Pop callers up to its domain's cell capacity.
type Stack[T any] struct {
	top    atomic.Pointer[node[T]]
	count  atomic.Int64
	domain *hazard.Domain[node[T]]
}

// New returns an empty Stack.
func New[T any](opts ...Option) *Stack[T] {
	cfg := config{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Stack[T]{domain: hazard.NewDomain[node[T]](cfg.capacity)}
}

// Size returns the number of values currently on the stack.
func (s *Stack[T]) Size() int {
	return int(s.count.Load())
}

// Push puts v on top of the stack.
func (s *Stack[T]) Push(v T) {
	slot := &node[T]{value: v}
	for {
		top := s.top.Load()
		slot.prev = top
		if s.top.CompareAndSwap(top, slot) {
			s.count.Add(1)
			return
		}
	}
}

// Pop removes and returns the value at the top of the stack. It reports
// false if the stack is empty.
func (s *Stack[T]) Pop() (v T, ok bool) {
	h := hazard.MustNewHandle(s.domain)
	defer h.Release()

	for {
		old := h.Protect(&s.top)
		if old == nil {
			var zero T
			return zero, false
		}
		next := old.prev
		if s.top.CompareAndSwap(old, next) {
			h.Reset(nil)
			s.count.Add(-1)
			v = old.value
			h.Retire(old)
			return v, true
		}
	}
}

// Stats exposes the backing hazard domain's reclamation bookkeeping, for
// diagnostics and tests.
func (s *Stack[T]) Stats() hazard.DomainStats {
	return s.domain.Stats()
}
