package session

import "sync"

// Reason records why a session was asked to stop.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInterrupt
	ReasonLocalClosed
	ReasonRemoteClosed
	ReasonFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonInterrupt:
		return "interrupt"
	case ReasonLocalClosed:
		return "local closed"
	case ReasonRemoteClosed:
		return "remote closed"
	case ReasonFailed:
		return "failed"
	default:
		return "none"
	}
}

// CancelFlag is a one-shot cancellation signal.  The first Raise wins;
// later calls are ignored, so the recorded reason is always the event
// that actually ended the session.
type CancelFlag struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason Reason
	err    error
}

// NewCancelFlag returns a lowered flag.
func NewCancelFlag() *CancelFlag {
	return &CancelFlag{done: make(chan struct{})}
}

// Raise sets the flag with the given reason.  It reports whether this
// call was the one that set it.
func (f *CancelFlag) Raise(r Reason, err error) bool {
	set := false
	f.once.Do(func() {
		f.mu.Lock()
		f.reason = r
		f.err = err
		f.mu.Unlock()
		close(f.done)
		set = true
	})
	return set
}

// Interrupt raises the flag on behalf of the user.
func (f *CancelFlag) Interrupt() bool { return f.Raise(ReasonInterrupt, nil) }

// Fail raises the flag with an I/O failure.
func (f *CancelFlag) Fail(err error) bool { return f.Raise(ReasonFailed, err) }

// Raised reports whether the flag is set.  It never blocks.
func (f *CancelFlag) Raised() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done is closed when the flag is raised.
func (f *CancelFlag) Done() <-chan struct{} { return f.done }

// Reason returns the winning reason and its error, if any.
func (f *CancelFlag) Reason() (Reason, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason, f.err
}
