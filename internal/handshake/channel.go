package handshake

import (
	"net"
	"sync"
	"time"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/pollio"
)

// Channel is an open byte stream to one service inside a sandbox.
// One goroutine may read while another writes; Close is safe from
// any goroutine and takes effect once.
type Channel struct {
	Port uint32

	conn    net.Conn
	rd      pollio.Reader
	wr      pollio.Writer
	pending []byte // bytes that followed the OK line

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

func newChannel(conn net.Conn, rd pollio.Reader, wr pollio.Writer, port uint32, pending []byte) *Channel {
	var p []byte
	if len(pending) > 0 {
		p = append(p, pending...)
	}
	return &Channel{Port: port, conn: conn, rd: rd, wr: wr, pending: p, closed: make(chan struct{})}
}

func (c *Channel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Channel) takePending(p []byte) (int, bool) {
	if len(c.pending) == 0 {
		return 0, false
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, true
}

// Read implements io.Reader.
func (c *Channel) Read(p []byte) (int, error) {
	if c.isClosed() {
		return 0, kerr.ErrChannelClosed
	}
	if n, ok := c.takePending(p); ok {
		return n, nil
	}
	return c.rd.Read(p)
}

// ReadTimeout waits at most d for data and returns pollio.ErrIdle if
// none arrived.
func (c *Channel) ReadTimeout(p []byte, d time.Duration) (int, error) {
	if c.isClosed() {
		return 0, kerr.ErrChannelClosed
	}
	if n, ok := c.takePending(p); ok {
		return n, nil
	}
	return c.rd.ReadTimeout(p, d)
}

// Write implements io.Writer.
func (c *Channel) Write(p []byte) (int, error) {
	if c.isClosed() {
		return 0, kerr.ErrChannelClosed
	}
	return c.wr.Write(p)
}

// WriteTimeout waits at most d for the peer to accept p and returns
// pollio.ErrIdle with the count written so far if it did not.
func (c *Channel) WriteTimeout(p []byte, d time.Duration) (int, error) {
	if c.isClosed() {
		return 0, kerr.ErrChannelClosed
	}
	return c.wr.WriteTimeout(p, d)
}

// Close closes the underlying connection.  Later calls return the
// first result.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
