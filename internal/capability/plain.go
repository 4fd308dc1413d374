package capability

import (
	"context"

	"kuasarctl/internal/relay"
	"kuasarctl/internal/session"
)

// Plain relays stdin and stdout without touching the terminal.  It
// suits pipes and scripts.
type Plain struct {
	Relay *relay.Relay
}

// Handle shuttles bytes until either side closes or the session is
// cancelled.
func (p *Plain) Handle(ctx context.Context, sess *session.Session) session.Outcome {
	return p.Relay.Run(ctx, sess.Stdin, sess.Stdout, sess.Channel, sess.Cancel)
}
