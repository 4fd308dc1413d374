package session

import "fmt"

// OutcomeKind tags how a session ended.
type OutcomeKind int

const (
	Completed OutcomeKind = iota
	RemoteClosed
	LocalClosed
	Interrupted
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case RemoteClosed:
		return "remote closed"
	case LocalClosed:
		return "local closed"
	case Interrupted:
		return "interrupted"
	case Failed:
		return "failed"
	default:
		return "completed"
	}
}

// Outcome is the result of a session.  Err is set only for Failed.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

func (o Outcome) String() string {
	if o.Kind == Failed && o.Err != nil {
		return fmt.Sprintf("failed: %v", o.Err)
	}
	return o.Kind.String()
}

// Error returns the failure to surface to the caller.  Every outcome
// other than Failed, including an interrupt, is a clean exit.
func (o Outcome) Error() error {
	if o.Kind == Failed {
		return o.Err
	}
	return nil
}

// OutcomeOf maps the flag's winning reason to an outcome.  A flag that
// was never raised means the session ran to completion.
func OutcomeOf(f *CancelFlag) Outcome {
	r, err := f.Reason()
	switch r {
	case ReasonInterrupt:
		return Outcome{Kind: Interrupted}
	case ReasonLocalClosed:
		return Outcome{Kind: LocalClosed}
	case ReasonRemoteClosed:
		return Outcome{Kind: RemoteClosed}
	case ReasonFailed:
		return Outcome{Kind: Failed, Err: err}
	default:
		return Outcome{Kind: Completed}
	}
}
