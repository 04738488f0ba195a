package queue_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hazardconc/smr/queue"
	"github.com/stretchr/testify/require"
)

func TestEmptyDequeueReturnsFalse(t *testing.T) {
	q := queue.New[int]()
	_, ok := q.Dequeue()
	require.False(t, ok)
	require.Equal(t, 0, q.Size())
}

func TestSingleEnqueueDequeue(t *testing.T) {
	q := queue.New[int]()
	q.Enqueue(42)
	v, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, 42, v)

	_, ok = q.Dequeue()
	require.False(t, ok)
}

// TestSequentialFIFO is the sequential-FIFO scenario: enqueue 1..=10000,
// dequeue ten thousand times, expect the sequence in order then empty.
func TestSequentialFIFO(t *testing.T) {
	q := queue.New[int]()
	const n = 10000
	for i := 1; i <= n; i++ {
		q.Enqueue(i)
	}
	for i := 1; i <= n; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.Dequeue()
	require.False(t, ok)
}

// TestConcurrentDequeueNoProducers is the "concurrent pop, no producers"
// scenario: pre-fill with 0..=9999, four agents dequeue until empty, the
// union of results must be exactly that set with no duplicates.
func TestConcurrentDequeueNoProducers(t *testing.T) {
	q := queue.New[int](queue.WithCapacity(16))
	const n = 10000
	for i := 0; i < n; i++ {
		q.Enqueue(i)
	}

	const consumers = 4
	results := make([]int, n)
	var idx atomic.Int64
	var wg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok := q.Dequeue()
				if !ok {
					return
				}
				results[idx.Add(1)-1] = v
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, n, idx.Load())
	seen := make([]bool, n)
	for _, v := range results {
		require.False(t, seen[v], "duplicate value %d", v)
		seen[v] = true
	}
}

// TestConcurrentProducerConsumer is the producer/consumer scenario: 4
// producers x 1000 items, 4 consumers; the multiset consumed equals the
// multiset produced.
func TestConcurrentProducerConsumer(t *testing.T) {
	q := queue.New[int](queue.WithCapacity(16))
	const producers, perProducer, consumers = 4, 1000, 4
	total := producers * perProducer

	var produced, consumed atomic.Int64
	var pwg, cwg sync.WaitGroup
	done := make(chan struct{})

	for p := 0; p < producers; p++ {
		pwg.Add(1)
		go func() {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(i)
				produced.Add(1)
			}
		}()
	}
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				select {
				case <-done:
					// Drain whatever is left after producers finished.
					for {
						if _, ok := q.Dequeue(); ok {
							consumed.Add(1)
						} else {
							return
						}
					}
				default:
					if _, ok := q.Dequeue(); ok {
						consumed.Add(1)
					}
				}
			}
		}()
	}
	pwg.Wait()
	close(done)
	cwg.Wait()

	require.EqualValues(t, total, produced.Load())
	require.EqualValues(t, produced.Load(), consumed.Load())
	require.Equal(t, 0, q.Size())
}

// TestFIFOSingleProducerSingleConsumer is property P5: enqueue-of-x before
// enqueue-of-y in program order on one agent means, if both are eventually
// dequeued by one agent, dequeue-of-x precedes dequeue-of-y.
func TestFIFOSingleProducerSingleConsumer(t *testing.T) {
	q := queue.New[int]()
	const n = 5000
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			q.Enqueue(i)
		}
	}()
	<-done

	for i := 0; i < n; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}
