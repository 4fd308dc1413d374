package util

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestIsHarmless(t *testing.T) {
	if !IsHarmless(nil) {
		t.Error("nil should be harmless")
	}
	if !IsHarmless(io.EOF) {
		t.Error("io.EOF should be harmless")
	}
	if !IsHarmless(net.ErrClosed) {
		t.Error("net.ErrClosed should be harmless")
	}
	if !IsHarmless(fmt.Errorf("write: %w", syscall.EPIPE)) {
		t.Error("EPIPE should be harmless")
	}
	if !IsHarmless(&net.OpError{Op: "read", Net: "unix", Err: net.ErrClosed}) {
		t.Error("OpError wrapping ErrClosed should be harmless")
	}
	if IsHarmless(io.ErrUnexpectedEOF) {
		t.Error("ErrUnexpectedEOF should NOT be harmless")
	}
}

func TestFlush(t *testing.T) {
	var out bytes.Buffer
	bw := bufio.NewWriter(&out)
	bw.WriteString("pending")

	if out.Len() != 0 {
		t.Fatal("bufio.Writer should still hold the data")
	}
	if err := Flush(bw); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.String() != "pending" {
		t.Errorf("out = %q, want %q", out.String(), "pending")
	}

	// Unbuffered writers are a no-op.
	if err := Flush(&out); err != nil {
		t.Errorf("Flush(bytes.Buffer) = %v", err)
	}
}
