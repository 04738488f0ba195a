// Package stack implements an unbounded lock-free LIFO stack.
//
// Push allocates a node and CASes it onto the head. Pop leases a hazard
// handle, protects the head, reads the protected node's previous pointer
// (safe to dereference, since the node is protected), CASes the head down,
// and retires the popped node through the domain. See package hazard for
// the reclamation machinery this relies on.
//
// On a single goroutine, Pop returns values in the reverse order they were
// Pushed.
package stack
