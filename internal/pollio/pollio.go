// Package pollio gives every blocking read in kuasarctl a bounded wait.
//
// Relay workers must notice cancellation within one poll interval even
// when their source never produces data.  A Reader's ReadTimeout
// returns ErrIdle when nothing arrived within the window, leaving the
// source intact for the next attempt.
//
// Three strategies are used, in order of preference:
//
//   - read deadlines, for net.Conn and pollable *os.File values
//   - poll(2) on the raw descriptor, for blocking files such as a
//     terminal on stdin (unix only)
//   - a single helper goroutine for any other io.Reader
package pollio

import (
	"errors"
	"io"
	"os"
	"time"
)

// ErrIdle is returned by ReadTimeout when no data arrived within the
// poll window.  It is never a terminal condition.
var ErrIdle = errors.New("pollio: no data within poll window")

// Reader is an io.Reader that can also wait for a bounded time.
// Implementations are not safe for concurrent readers.
type Reader interface {
	io.Reader
	ReadTimeout(p []byte, d time.Duration) (int, error)
}

// New wraps r in the cheapest Reader that can bound its reads.
func New(r io.Reader) Reader {
	if pr, ok := r.(Reader); ok {
		return pr
	}
	if dr, ok := newDeadlineReader(r); ok {
		return dr
	}
	if f, ok := r.(fdFile); ok {
		if fr, ok := newFDReader(f); ok {
			return fr
		}
	}
	return newAsyncReader(r)
}

// ── deadlines ────────────────────────────────────────────────────────

type deadliner interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

type deadlineReader struct {
	r deadliner
}

func newDeadlineReader(r io.Reader) (*deadlineReader, bool) {
	d, ok := r.(deadliner)
	if !ok {
		return nil, false
	}
	// Non-pollable files report os.ErrNoDeadline here.
	if err := d.SetReadDeadline(time.Time{}); err != nil {
		return nil, false
	}
	return &deadlineReader{r: d}, true
}

func (d *deadlineReader) Read(p []byte) (int, error) {
	if err := d.r.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}
	return d.r.Read(p)
}

func (d *deadlineReader) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := d.r.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := d.r.Read(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		if n > 0 {
			return n, nil
		}
		return 0, ErrIdle
	}
	return n, err
}

// ── helper goroutine ─────────────────────────────────────────────────

type chunk struct {
	b   []byte
	err error
}

// asyncReader moves the blocking Read onto one goroutine and hands
// chunks over an unbuffered channel.  The goroutine stays parked in
// Read until the source yields, so it may outlive the session; it
// never reads more than one chunk ahead.
type asyncReader struct {
	r       io.Reader
	ch      chan chunk
	started bool
	pending []byte
	err     error
}

func newAsyncReader(r io.Reader) *asyncReader {
	return &asyncReader{r: r, ch: make(chan chunk)}
}

func (a *asyncReader) loop() {
	for {
		buf := make([]byte, 4096)
		n, err := a.r.Read(buf)
		if n > 0 {
			a.ch <- chunk{b: buf[:n]}
		}
		if err != nil {
			a.ch <- chunk{err: err}
			return
		}
	}
}

func (a *asyncReader) take(p []byte) (int, bool) {
	if len(a.pending) == 0 {
		return 0, false
	}
	n := copy(p, a.pending)
	a.pending = a.pending[n:]
	return n, true
}

func (a *asyncReader) deliver(p []byte, c chunk) (int, error) {
	if c.err != nil {
		a.err = c.err
		return 0, c.err
	}
	n := copy(p, c.b)
	a.pending = c.b[n:]
	return n, nil
}

func (a *asyncReader) ensureStarted() {
	if !a.started {
		a.started = true
		go a.loop()
	}
}

func (a *asyncReader) Read(p []byte) (int, error) {
	if n, ok := a.take(p); ok {
		return n, nil
	}
	if a.err != nil {
		return 0, a.err
	}
	a.ensureStarted()
	return a.deliver(p, <-a.ch)
}

func (a *asyncReader) ReadTimeout(p []byte, d time.Duration) (int, error) {
	if n, ok := a.take(p); ok {
		return n, nil
	}
	if a.err != nil {
		return 0, a.err
	}
	a.ensureStarted()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case c := <-a.ch:
		return a.deliver(p, c)
	case <-timer.C:
		return 0, ErrIdle
	}
}
