package util

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// DefaultBufSize is the standard buffer size for relay I/O (32 KiB).
// Relay loops slice pooled buffers down to their configured chunk size.
const DefaultBufSize = 32 * 1024

// IsHarmless returns true for errors that are expected while a session
// is being torn down: end of stream, use of a closed connection, and a
// peer that went away between our read and our write.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// Flush flushes w if it buffers output (bufio.Writer, some terminals
// wrappers).  Writers without a Flush method are written through
// already, so there is nothing to do.
func Flush(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
