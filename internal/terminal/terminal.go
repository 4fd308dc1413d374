// Package terminal switches the local terminal into raw mode for an
// interactive session and puts it back afterwards.
//
// Raw mode here turns off echo and line buffering but leaves the
// signal keys active, so Ctrl-C still raises SIGINT locally instead of
// being forwarded to the sandbox as a byte.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	kerr "kuasarctl/internal/errors"
)

// Controller owns the saved mode of one terminal.  Restore may be
// called from any number of exit paths; the terminal is reprogrammed
// at most once.
type Controller struct {
	fd    int
	saved *state

	// ErrOut receives recovery guidance if restoring fails.  It must
	// not be the data stream.
	ErrOut io.Writer

	mu       sync.Mutex
	raw      bool
	restored bool
	err      error
}

// Capture snapshots the mode of the terminal on fd.
func Capture(fd int) (*Controller, error) {
	if !term.IsTerminal(fd) {
		return nil, kerr.ErrNotATerminal
	}
	st, err := getState(fd)
	if err != nil {
		return nil, kerr.LocalIO("read terminal mode", err)
	}
	return &Controller{fd: fd, saved: st, ErrOut: os.Stderr}, nil
}

// EnterRaw switches the terminal to raw mode.
func (c *Controller) EnterRaw() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.restored {
		return kerr.LocalIO("enter raw mode", fmt.Errorf("terminal already restored"))
	}
	if err := setState(c.fd, makeRaw(c.saved)); err != nil {
		return kerr.LocalIO("enter raw mode", err)
	}
	c.raw = true
	return nil
}

// Restore puts back the mode captured by Capture.  Only the first call
// touches the terminal; later calls return its result.  A failure is
// also reported on ErrOut with manual recovery steps.
func (c *Controller) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.restored {
		return c.err
	}
	c.restored = true
	if !c.raw {
		return nil
	}
	if err := setState(c.fd, c.saved); err != nil {
		c.err = kerr.LocalIO("restore terminal", err)
		c.printGuidance(err)
	}
	return c.err
}

// Fd returns the controlled descriptor.
func (c *Controller) Fd() int { return c.fd }

func (c *Controller) printGuidance(err error) {
	if c.ErrOut == nil {
		return
	}
	r := lipgloss.NewRenderer(c.ErrOut)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hint := r.NewStyle().Foreground(lipgloss.Color("11"))

	fmt.Fprintln(c.ErrOut)
	fmt.Fprintln(c.ErrOut, title.Render("Failed to restore terminal settings: "+err.Error()))
	fmt.Fprintln(c.ErrOut, hint.Render("Your terminal may not echo input. Type 'stty sane' or 'reset' and press Enter to recover."))
}
