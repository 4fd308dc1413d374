// Package handshake opens a channel to a service inside a sandbox.
//
// The control socket speaks a one-line text protocol: the client sends
// "CONNECT <port>\n" and the sandbox answers with a line containing
// "OK".  From then on the connection is a raw byte pipe to that port.
package handshake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/pollio"
	"kuasarctl/internal/retry"
	"kuasarctl/internal/transport"
	"kuasarctl/util"
)

// maxResponse bounds the bytes read while waiting for the OK line.
const maxResponse = 4096

// Options tunes a single handshake.
type Options struct {
	Timeout      time.Duration // whole CONNECT/OK exchange
	WriteTimeout time.Duration // CONNECT write
	Retries      int           // empty or partial reads tolerated
	RetryDelay   time.Duration // pause between reads
}

// DefaultOptions returns the stock handshake timings.
func DefaultOptions() Options {
	return Options{
		Timeout:      5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Retries:      10,
		RetryDelay:   100 * time.Millisecond,
	}
}

// Client dials control sockets and negotiates channels.
type Client struct {
	Dialer  transport.Dialer
	Options Options
	Logger  *util.Logger
}

// Open connects to controlPath and negotiates a channel to port.  A
// dial failure is a ConnectionFailed error whose cause is preserved;
// anything after the connection is established is HandshakeFailed.
// Options.Timeout bounds the dial and the negotiation together.
// The handshake is attempted once.
func (c *Client) Open(ctx context.Context, controlPath string, port uint32) (*Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Options.Timeout)
	defer cancel()

	c.Logger.Verbose("connecting to %s", controlPath)
	conn, err := c.Dialer.Dial(ctx, "unix", controlPath)
	if err != nil {
		return nil, kerr.ConnectionFailed(controlPath, err)
	}

	ch, err := Negotiate(ctx, conn, port, c.Options)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.Logger.Verbose("channel to port %d ready", port)
	return ch, nil
}

// errNoLine means the response so far holds no OK line.
var errNoLine = errors.New("partial response")

// okLine finds the first complete line containing OK and returns the
// offset just past its newline.
func okLine(resp []byte) (int, bool) {
	off := 0
	for {
		i := bytes.IndexByte(resp[off:], '\n')
		if i < 0 {
			return 0, false
		}
		if bytes.Contains(resp[off:off+i], okToken) {
			return off + i + 1, true
		}
		off += i + 1
	}
}

// okTail reports an unterminated last line containing OK.
func okTail(resp []byte) bool {
	return bytes.Contains(resp[bytes.LastIndexByte(resp, '\n')+1:], okToken)
}

var okToken = []byte("OK")

// firstLine quotes the start of a rejected response for the error.
func firstLine(resp []byte) []byte {
	if i := bytes.IndexByte(resp, '\n'); i >= 0 {
		return resp[:i]
	}
	return resp
}

// Negotiate runs the CONNECT/OK exchange on conn.  Any complete line
// containing OK accepts the channel; an unterminated OK is accepted
// once the peer goes quiet for a retry delay, closes, or the budget
// runs out.  Bytes after the OK line become the channel's first bytes.
//
// Deadlines are used when conn supports them and cleared on success so
// the relay may idle indefinitely.  Connections without deadline
// support, such as SSH-forwarded sockets, are bounded by ctx through
// pollio instead.
func Negotiate(ctx context.Context, conn net.Conn, port uint32, opts Options) (*Channel, error) {
	fail := func(err error) (*Channel, error) {
		conn.SetDeadline(time.Time{}) //nolint:errcheck
		return nil, kerr.HandshakeFailed(port, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	wr := pollio.NewWriter(conn)
	if err := sendConnect(wr, port, opts.WriteTimeout, deadline); err != nil {
		return fail(err)
	}

	rd := pollio.New(conn)
	var resp, pending []byte
	buf := make([]byte, 256)

	err := retry.Constant(opts.RetryDelay, opts.Retries).Do(ctx, func(int) error {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return retry.Permanent(kerr.ErrTimeout)
		}
		window := remaining
		if okTail(resp) && opts.RetryDelay < window {
			window = opts.RetryDelay
		}
		n, err := rd.ReadTimeout(buf, window)
		resp = append(resp, buf[:n]...)

		if end, ok := okLine(resp); ok {
			pending = resp[end:]
			return nil
		}
		if len(resp) > maxResponse {
			return retry.Permanent(fmt.Errorf("%w: response too long", kerr.ErrNoOKResponse))
		}

		switch {
		case err == nil, kerr.IsTransient(err):
			return errNoLine
		case okTail(resp):
			// Quiet or closed after an unterminated OK.
			return nil
		case errors.Is(err, pollio.ErrIdle):
			return retry.Permanent(kerr.ErrTimeout)
		default:
			// EOF and hard errors still consume the budget so a
			// peer that closes early fails the same way as one
			// that stays silent.
			return err
		}
	})
	if err != nil && okTail(resp) {
		err = nil
	}
	if err != nil {
		switch {
		case len(resp) > 0 && !errors.Is(err, kerr.ErrNoOKResponse):
			err = fmt.Errorf("%w: got %q", kerr.ErrNoOKResponse, firstLine(resp))
		case errors.Is(err, errNoLine):
			err = fmt.Errorf("%w after %d reads", kerr.ErrNoOKResponse, opts.Retries)
		case errors.Is(err, io.EOF):
			err = fmt.Errorf("%w: connection closed by peer", kerr.ErrNoOKResponse)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = kerr.ErrTimeout
		}
		return fail(err)
	}

	// Connections without deadlines have nothing to clear.
	conn.SetDeadline(time.Time{}) //nolint:errcheck
	return newChannel(conn, rd, wr, port, pending), nil
}

// sendConnect writes the CONNECT line within writeTimeout, never past
// deadline.
func sendConnect(w pollio.Writer, port uint32, writeTimeout time.Duration, deadline time.Time) error {
	by := time.Now().Add(writeTimeout)
	if deadline.Before(by) {
		by = deadline
	}
	line := []byte(fmt.Sprintf("CONNECT %d\n", port))
	for len(line) > 0 {
		remaining := time.Until(by)
		if remaining <= 0 {
			return fmt.Errorf("send CONNECT: %w", kerr.ErrTimeout)
		}
		n, err := w.WriteTimeout(line, remaining)
		line = line[n:]
		if err != nil && !errors.Is(err, pollio.ErrIdle) {
			return fmt.Errorf("send CONNECT: %w", err)
		}
	}
	return nil
}
