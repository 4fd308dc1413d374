package capability

import (
	"context"
	"io"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/relay"
	"kuasarctl/internal/session"
	"kuasarctl/internal/terminal"
)

// Interactive puts the local terminal into raw mode for the length of
// the relay.  The terminal is restored after both relay workers have
// stopped, on every return path.
type Interactive struct {
	Relay *relay.Relay

	// ErrOut receives terminal recovery guidance.
	ErrOut io.Writer
}

type fder interface {
	Fd() uintptr
}

// Handle relays in raw mode.  When stdin is not a terminal the session
// degrades to a plain relay with a warning.
func (c *Interactive) Handle(ctx context.Context, sess *session.Session) session.Outcome {
	f, ok := sess.Stdin.(fder)
	if !ok {
		sess.Logger.Warn("stdin is not a terminal; relaying without raw mode")
		return (&Plain{Relay: c.Relay}).Handle(ctx, sess)
	}

	tc, err := terminal.Capture(int(f.Fd()))
	if kerr.Is(err, kerr.ErrNotATerminal) {
		sess.Logger.Warn("stdin is not a terminal; relaying without raw mode")
		return (&Plain{Relay: c.Relay}).Handle(ctx, sess)
	}
	if err != nil {
		return session.Outcome{Kind: session.Failed, Err: err}
	}
	if c.ErrOut != nil {
		tc.ErrOut = c.ErrOut
	}

	if err := tc.EnterRaw(); err != nil {
		return session.Outcome{Kind: session.Failed, Err: err}
	}
	outcome := c.run(ctx, sess, tc)
	if err := tc.Restore(); err != nil && outcome.Kind != session.Failed {
		outcome = session.Outcome{Kind: session.Failed, Err: err}
	}
	sess.Logger.Verbose("terminal restored")
	return outcome
}

// run relays with a deferred restore so a panic in the relay still
// leaves the terminal usable. The deferred call only guards against
// panics; Handle restores again and reports the failure, and Restore
// returns the first result on repeat calls.
func (c *Interactive) run(ctx context.Context, sess *session.Session, tc *terminal.Controller) session.Outcome {
	defer tc.Restore() //nolint:errcheck
	return c.Relay.Run(ctx, sess.Stdin, sess.Stdout, sess.Channel, sess.Cancel)
}
