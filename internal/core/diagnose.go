package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Diagnosis explains why a control socket could not be dialed.
type Diagnosis struct {
	ControlPath string
	Cause       error

	// Local enables stat checks; sockets on a remote node cannot be
	// inspected from here.
	Local bool

	// Available is a fresh candidate list taken after the failure.
	Available []string
	Listed    bool
}

// Hint renders the diagnosis as indented lines for the user.
func (d *Diagnosis) Hint() string {
	var b strings.Builder

	if d.Local {
		dir := filepath.Dir(d.ControlPath)
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(&b, "  Pod directory does not exist: %s\n", dir)
		} else if fi, err := os.Stat(d.ControlPath); err == nil {
			if fi.Mode()&fs.ModeSocket == 0 {
				fmt.Fprintf(&b, "  %s exists but is not a socket\n", d.ControlPath)
			} else if fi.Mode().Perm()&0o222 == 0 {
				fmt.Fprintf(&b, "  Socket exists but is not writable (mode %s)\n", fi.Mode().Perm())
			}
		}
	}

	if d.Listed {
		if len(d.Available) == 0 {
			b.WriteString("  No pods are currently running.\n")
		} else {
			b.WriteString("  The pod may have exited. Available pods:\n")
			for _, id := range d.Available {
				fmt.Fprintf(&b, "    %s\n", id)
			}
		}
	}

	if errors.Is(d.Cause, syscall.EACCES) || errors.Is(d.Cause, fs.ErrPermission) {
		b.WriteString("  Permission denied: run with sudo or check the socket permissions.\n")
	}

	b.WriteString("Troubleshooting:\n")
	b.WriteString("  1. Check that the pod is running: kuasarctl list\n")
	b.WriteString("  2. Check that the debug console is enabled for the sandbox\n")
	fmt.Fprintf(&b, "  3. Check permissions on %s", d.ControlPath)
	return b.String()
}
