//go:build unix

package pollio

import (
	"os"
	"testing"
)

func TestFDReader(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	fr, ok := newFDReader(r)
	if !ok {
		t.Fatal("newFDReader should succeed on unix")
	}
	exercise(t, fr,
		func(b []byte) { w.Write(b) },
		func() { w.Close() })
}
