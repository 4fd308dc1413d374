// Package relay copies bytes between local I/O and a sandbox channel.
//
// Two workers run side by side: upstream (local input → channel) and
// downstream (channel → local output).  Neither ever blocks longer than
// one poll interval without re-checking the session's cancel flag, and
// Run returns only after both have stopped, so the caller may restore
// the terminal and close the channel knowing nothing touches them any
// more.
package relay

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/metrics"
	"kuasarctl/internal/pollio"
	"kuasarctl/internal/session"
	"kuasarctl/util"
)

// Options tunes the copy loops.
type Options struct {
	PollInterval    time.Duration
	UpstreamChunk   int
	DownstreamChunk int

	// DrainTimeout caps how long downstream keeps delivering remote
	// output after local input has closed.
	DrainTimeout time.Duration
}

// DefaultOptions returns the stock relay settings.
func DefaultOptions() Options {
	return Options{
		PollInterval:    100 * time.Millisecond,
		UpstreamChunk:   1024,
		DownstreamChunk: 4096,
		DrainTimeout:    2 * time.Second,
	}
}

// Relay runs the copy loops for one session.
type Relay struct {
	Options Options
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// New returns a Relay.  A nil collector disables statistics.
func New(opts Options, logger *util.Logger, m *metrics.Collector) *Relay {
	return &Relay{Options: opts, Logger: logger, Metrics: m}
}

// Run relays in both directions until local input ends, the channel
// ends, an I/O error occurs, or flag is raised by someone else.
// Cancelling ctx counts as an interrupt.
//
// When local input ends first, downstream keeps writing remote output
// until the channel has been quiet for one poll interval (bounded by
// DrainTimeout), so a reply already in flight is not cut off.
func (r *Relay) Run(ctx context.Context, in io.Reader, out io.Writer, ch io.ReadWriter, flag *session.CancelFlag) session.Outcome {
	defer r.Metrics.Time(metrics.StageRelay)()
	stop := context.AfterFunc(ctx, func() { flag.Interrupt() })
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.upstream(pollio.New(in), ch, flag)
	}()
	go func() {
		defer wg.Done()
		r.downstream(pollio.New(ch), out, flag, false)
	}()
	wg.Wait()

	return session.OutcomeOf(flag)
}

// Receive runs only the downstream loop, for one-shot commands whose
// input has already been written.  The end of the channel means the
// command completed.
func (r *Relay) Receive(ctx context.Context, out io.Writer, ch io.Reader, flag *session.CancelFlag) session.Outcome {
	defer r.Metrics.Time(metrics.StageRelay)()
	stop := context.AfterFunc(ctx, func() { flag.Interrupt() })
	defer stop()

	r.downstream(pollio.New(ch), out, flag, true)
	return session.OutcomeOf(flag)
}

// Send writes p to w in full.  It gives up when flag is raised, or
// ctx is cancelled, while the peer is not accepting bytes.
func (r *Relay) Send(ctx context.Context, w io.Writer, p []byte, flag *session.CancelFlag) error {
	stop := context.AfterFunc(ctx, func() { flag.Interrupt() })
	defer stop()

	if err := r.send(pollio.NewWriter(w), p, flag.Raised); err != nil {
		return err
	}
	r.Metrics.Upstream(len(p))
	return nil
}

// errStopped means a write was abandoned because the session is ending.
var errStopped = errors.New("relay: write abandoned")

// send writes p in full, calling stop after every poll interval in
// which the destination accepted nothing more.
func (r *Relay) send(w pollio.Writer, p []byte, stop func() bool) error {
	for len(p) > 0 {
		n, err := w.WriteTimeout(p, r.Options.PollInterval)
		p = p[n:]
		switch {
		case err == nil:
		case errors.Is(err, pollio.ErrIdle), kerr.IsTransient(err):
			if stop() {
				return errStopped
			}
		default:
			return err
		}
	}
	return nil
}

func (r *Relay) upstream(rd pollio.Reader, ch io.Writer, flag *session.CancelFlag) {
	buf, release := chunk(r.Options.UpstreamChunk)
	defer release()
	defer r.Logger.Debug("relay: upstream stopped")

	wr := pollio.NewWriter(ch)
	for !flag.Raised() {
		n, err := rd.ReadTimeout(buf, r.Options.PollInterval)
		if n > 0 {
			if flag.Raised() {
				return
			}
			if werr := r.send(wr, buf[:n], flag.Raised); werr != nil {
				if errors.Is(werr, errStopped) {
					return
				}
				if util.IsHarmless(werr) {
					flag.Raise(session.ReasonRemoteClosed, nil)
				} else {
					flag.Fail(kerr.LocalIO("write channel", werr))
				}
				return
			}
			r.Metrics.Upstream(n)
		}

		switch {
		case err == nil:
		case errors.Is(err, pollio.ErrIdle):
			r.Metrics.IdlePoll()
		case kerr.IsTransient(err):
			r.Metrics.TransientError()
		case errors.Is(err, io.EOF):
			r.Logger.Debug("relay: local input closed")
			flag.Raise(session.ReasonLocalClosed, nil)
			return
		default:
			flag.Fail(kerr.LocalIO("read input", err))
			return
		}
	}
}

func (r *Relay) downstream(rd pollio.Reader, out io.Writer, flag *session.CancelFlag, oneShot bool) {
	buf, release := chunk(r.Options.DownstreamChunk)
	defer release()
	defer r.Logger.Debug("relay: downstream stopped")

	wr := pollio.NewWriter(out)
	var drainUntil time.Time
	// stopWrite lets a blocked stdout hold the worker only while the
	// session is live or draining.
	stopWrite := func() bool {
		if !flag.Raised() {
			return false
		}
		if reason, _ := flag.Reason(); reason != session.ReasonLocalClosed {
			return true
		}
		if drainUntil.IsZero() {
			drainUntil = time.Now().Add(r.Options.DrainTimeout)
		}
		return time.Now().After(drainUntil)
	}
	for {
		if flag.Raised() {
			if reason, _ := flag.Reason(); reason != session.ReasonLocalClosed {
				return
			}
			if drainUntil.IsZero() {
				drainUntil = time.Now().Add(r.Options.DrainTimeout)
			} else if time.Now().After(drainUntil) {
				return
			}
		}

		n, err := rd.ReadTimeout(buf, r.Options.PollInterval)
		if n > 0 {
			if werr := r.send(wr, buf[:n], stopWrite); werr != nil {
				if errors.Is(werr, errStopped) {
					return
				}
				if util.IsHarmless(werr) {
					flag.Raise(session.ReasonLocalClosed, nil)
				} else {
					flag.Fail(kerr.LocalIO("write output", werr))
				}
				return
			}
			if ferr := util.Flush(out); ferr != nil {
				flag.Fail(kerr.LocalIO("flush output", ferr))
				return
			}
			r.Metrics.Downstream(n)
		}

		switch {
		case err == nil:
		case errors.Is(err, pollio.ErrIdle):
			if !drainUntil.IsZero() {
				return
			}
			r.Metrics.IdlePoll()
		case kerr.IsTransient(err):
			r.Metrics.TransientError()
		case util.IsHarmless(err):
			r.Logger.Debug("relay: channel closed by remote")
			if !oneShot {
				flag.Raise(session.ReasonRemoteClosed, nil)
			}
			return
		default:
			flag.Fail(kerr.LocalIO("read channel", err))
			return
		}
	}
}

// chunk returns a buffer of exactly size bytes, pooled when it fits.
func chunk(size int) ([]byte, func()) {
	if size <= 0 || size > util.DefaultBufSize {
		return make([]byte, max(size, 1)), func() {}
	}
	p := util.GetBuf()
	return (*p)[:size], func() { util.PutBuf(p) }
}
