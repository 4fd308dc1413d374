package pollio

import (
	"errors"
	"io"
	"os"
	"time"
)

// Writer is an io.Writer whose writes can give up waiting after a
// bounded time.
//
// WriteTimeout returns the number of bytes accepted and ErrIdle when
// the window elapsed first.  The caller continues with the unwritten
// remainder, p[n:]; passing anything else after ErrIdle is an error.
type Writer interface {
	io.Writer
	WriteTimeout(p []byte, d time.Duration) (int, error)
}

// NewWriter wraps w in the cheapest Writer that can bound its writes:
// write deadlines when w supports them, otherwise one helper goroutine
// per pending write.
func NewWriter(w io.Writer) Writer {
	if pw, ok := w.(Writer); ok {
		return pw
	}
	if dw, ok := newDeadlineWriter(w); ok {
		return dw
	}
	return &asyncWriter{w: w}
}

// ── deadlines ────────────────────────────────────────────────────────

type writeDeadliner interface {
	io.Writer
	SetWriteDeadline(t time.Time) error
}

type deadlineWriter struct {
	w writeDeadliner
}

func newDeadlineWriter(w io.Writer) (*deadlineWriter, bool) {
	d, ok := w.(writeDeadliner)
	if !ok {
		return nil, false
	}
	// SSH channels and non-pollable files refuse deadlines.
	if err := d.SetWriteDeadline(time.Time{}); err != nil {
		return nil, false
	}
	return &deadlineWriter{w: d}, true
}

func (d *deadlineWriter) Write(p []byte) (int, error) {
	if err := d.w.SetWriteDeadline(time.Time{}); err != nil {
		return 0, err
	}
	return d.w.Write(p)
}

func (d *deadlineWriter) WriteTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := d.w.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := d.w.Write(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, ErrIdle
	}
	return n, err
}

// ── helper goroutine ─────────────────────────────────────────────────

type writeResult struct {
	n   int
	err error
}

// asyncWriter runs each write on its own goroutine over a private copy
// of the bytes.  A write that outlives its window stays pending and is
// collected by the next call; an abandoned one finishes or fails when
// the destination is closed.
type asyncWriter struct {
	w       io.Writer
	pending chan writeResult
}

func (a *asyncWriter) start(p []byte) {
	buf := append([]byte(nil), p...)
	done := make(chan writeResult, 1)
	go func() {
		n, err := a.w.Write(buf)
		done <- writeResult{n: n, err: err}
	}()
	a.pending = done
}

func (a *asyncWriter) Write(p []byte) (int, error) {
	if a.pending == nil {
		a.start(p)
	}
	r := <-a.pending
	a.pending = nil
	return r.n, r.err
}

func (a *asyncWriter) WriteTimeout(p []byte, d time.Duration) (int, error) {
	if a.pending == nil {
		a.start(p)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case r := <-a.pending:
		a.pending = nil
		return r.n, r.err
	case <-timer.C:
		return 0, ErrIdle
	}
}
