package core

import (
	"context"
	"errors"
	"io"
	"os"

	"kuasarctl/internal/capability"
	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/handshake"
	"kuasarctl/internal/metrics"
	"kuasarctl/internal/sandbox"
	"kuasarctl/internal/session"
	"kuasarctl/internal/shutdown"
	"kuasarctl/util"
)

// AttachMode resolves a pod, opens a channel to its debug console and
// runs a capability over it.
type AttachMode struct {
	Resolver   *sandbox.Resolver
	Client     *handshake.Client
	Capability capability.Capability
	PodID      string
	Port       uint32
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// LocalSockets enables filesystem checks when a dial fails.
	LocalSockets bool

	// WatchInterrupts turns SIGINT into a clean session stop.
	WatchInterrupts bool

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *AttachMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *AttachMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run resolves, connects, negotiates and hands the channel to the
// capability.  Resolution and handshake failures return before any
// terminal change.  The channel is closed after the capability has
// returned, and the transport when Run returns.
func (m *AttachMode) Run(ctx context.Context) error {
	defer m.Client.Dialer.Close()

	doneResolve := m.Metrics.Time(metrics.StageResolve)
	ref, err := m.Resolver.Resolve(ctx, m.PodID)
	doneResolve()
	if err != nil {
		return err
	}
	m.Logger.Verbose("resolved %q to %s", m.PodID, ref.ID)

	doneHandshake := m.Metrics.Time(metrics.StageHandshake)
	ch, err := m.Client.Open(ctx, ref.ControlPath, m.Port)
	doneHandshake()
	if err != nil {
		if kerr.IsKind(err, kerr.KindConnectionFailed) {
			return m.diagnose(ctx, err, ref)
		}
		return err
	}
	defer ch.Close()

	sess := session.New(ch, m.stdin(), m.stdout(), m.Logger)
	sess.Metrics = m.Metrics

	stop := func() {}
	if m.WatchInterrupts {
		stop = shutdown.Watch(sess.Cancel, m.Logger)
	}
	outcome := m.Capability.Handle(ctx, sess)
	stop()

	m.Metrics.RecordOutcome(outcome.Kind.String(), outcome.Err)
	m.Logger.Verbose("session %s: %d bytes sent, %d bytes received",
		outcome, m.Metrics.BytesUp(), m.Metrics.BytesDown())
	m.Logger.Debug("session stats:\n%s", m.Metrics.JSON())

	return outcome.Error()
}

// diagnose attaches the most useful explanation it can find to a dial
// failure.
func (m *AttachMode) diagnose(ctx context.Context, err error, ref sandbox.Ref) error {
	var e *kerr.Error
	if !errors.As(err, &e) {
		return err
	}
	d := &Diagnosis{
		ControlPath: ref.ControlPath,
		Cause:       e.Err,
		Local:       m.LocalSockets,
	}
	if ids, lerr := m.Resolver.List(ctx); lerr == nil {
		d.Available = ids
		d.Listed = true
	}
	return e.WithHint(d.Hint())
}
