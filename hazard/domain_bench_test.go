package hazard

import (
	"sync/atomic"
	"testing"
)

func BenchmarkProtect(b *testing.B) {
	d := NewDomain[probe](8)
	h := MustNewHandle(d)
	defer h.Release()

	var root atomic.Pointer[probe]
	root.Store(&probe{id: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Protect(&root)
	}
}

func BenchmarkRetire(b *testing.B) {
	d := NewDomain[probe](8)
	h := MustNewHandle(d)
	defer h.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Retire(&probe{id: i})
	}
}

func BenchmarkCaptureReleaseCycle(b *testing.B) {
	d := NewDomain[probe](DefaultCapacity)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := MustNewHandle(d)
		h.Release()
	}
}
