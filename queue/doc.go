// Package queue implements an unbounded lock-free Michael-Scott FIFO
// queue.
//
// head always points at a sentinel whose value is never returned. Enqueue
// protects tail, links a fresh node onto the last node in the chain, and
// best-effort swings tail forward. Dequeue protects head and head.next; if
// head == tail and next is nil the queue is empty, if head == tail and
// next is non-nil tail has lagged and is helped forward, otherwise the
// value is read out of next (which becomes the new sentinel) and head is
// retired through the domain.
package queue
