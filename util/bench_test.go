package util

import (
	"io"
	"testing"
)

// BenchmarkBufPool measures the allocation advantage of sync.Pool
// buffer reuse versus fresh allocation in the relay loops.
func BenchmarkBufPool(b *testing.B) {
	b.Run("pool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := GetBuf()
			_ = (*buf)[0]
			PutBuf(buf)
		}
	})
	b.Run("alloc", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := make([]byte, DefaultBufSize)
			_ = buf[0]
		}
	})
}

// BenchmarkLogger_Suppressed measures the cost of a debug call that is
// filtered out, which is the common case inside relay loops.
func BenchmarkLogger_Suppressed(b *testing.B) {
	l := NewLogger(1)
	l.SetOutput(io.Discard)
	for i := 0; i < b.N; i++ {
		l.Debug("relay: %d bytes", i)
	}
}
