// Package capability defines what runs over an established channel.
// Each Capability encapsulates one session mode (terminal, one-shot
// command, plain relay) and operates on a Session rather than a raw
// connection, which keeps capabilities testable and decoupled from
// how the channel was obtained.
package capability

import (
	"context"

	"kuasarctl/internal/session"
)

// Capability drives a single session according to a specific mode.
type Capability interface {
	// Handle runs the capability against the given session.  It
	// blocks until the session ends and reports how it ended.
	// Handle never closes the session's channel.
	Handle(ctx context.Context, sess *session.Session) session.Outcome
}
