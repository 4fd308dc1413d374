package capability

import (
	"context"
	"fmt"
	"strings"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/relay"
	"kuasarctl/internal/session"
)

// Command sends one command line to the sandbox shell and prints what
// comes back until the sandbox closes the channel.
type Command struct {
	Line      string
	MaxLength int
	Relay     *relay.Relay
}

// ValidateCommand rejects command lines the sandbox shell cannot take:
// embedded NUL bytes and anything longer than maxLen bytes.
func ValidateCommand(line string, maxLen int) error {
	if strings.IndexByte(line, 0) >= 0 {
		return &kerr.Error{Kind: kerr.KindConfig, Op: "command", Msg: "invalid command", Err: kerr.ErrCommandNull}
	}
	if maxLen > 0 && len(line) > maxLen {
		return kerr.Config(fmt.Sprintf("command too long: %d bytes (max %d)", len(line), maxLen))
	}
	return nil
}

// hasLiteralEscape reports a typed "\x1b" that the remote shell will
// see as four characters.  grep and sed patterns use it on purpose.
func hasLiteralEscape(line string) bool {
	if !strings.Contains(line, `\x1b`) {
		return false
	}
	return !strings.Contains(line, "grep") && !strings.Contains(line, "sed")
}

// Handle validates and sends the command, then relays the channel to
// stdout.  Nothing is written to the channel if validation fails.
func (c *Command) Handle(ctx context.Context, sess *session.Session) session.Outcome {
	if err := ValidateCommand(c.Line, c.MaxLength); err != nil {
		return session.Outcome{Kind: session.Failed, Err: err}
	}
	if hasLiteralEscape(c.Line) {
		sess.Logger.Warn(`command contains a literal \x1b escape sequence; it is sent as typed`)
	}

	sess.Logger.Debug("command: %s", c.Line)
	if err := c.Relay.Send(ctx, sess.Channel, []byte(c.Line+"\n"), sess.Cancel); err != nil {
		if sess.Cancel.Raised() {
			return session.OutcomeOf(sess.Cancel)
		}
		return session.Outcome{Kind: session.Failed, Err: kerr.LocalIO("send command", err)}
	}

	return c.Relay.Receive(ctx, sess.Stdout, sess.Channel, sess.Cancel)
}
