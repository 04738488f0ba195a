// Package hazard implements a generic hazard-pointer safe-memory-reclamation
// domain: a fixed array of protection cells plus, per cell, a retire list
// that accumulates pointers logically unlinked from a client structure until
// a reclamation scan proves no live handle is still publishing them.
//
// A Domain owns the cells. A Handle leases exactly one cell at a time and is
// the thing client code actually calls Protect/Retire through. Client data
// structures (see the stack and queue packages) drive the domain; the
// domain itself knows nothing about linked lists, CAS loops, or payloads.
package hazard
