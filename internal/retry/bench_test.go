package retry

import (
	"context"
	"testing"
)

// BenchmarkConstant_Exhausted measures a handshake-sized budget with
// no wait between attempts.
func BenchmarkConstant_Exhausted(b *testing.B) {
	p := Constant(0, 10)
	ctx := context.Background()

	for b.Loop() {
		p.Do(ctx, func(int) error { return errShortRead }) //nolint:errcheck
	}
}
