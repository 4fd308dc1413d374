// Package session represents a single attach lifecycle, binding an
// established channel with local I/O endpoints and the shared state
// every worker needs.
//
// Sessions decouple capabilities from concrete I/O sources: a
// capability doesn't need to know whether it's reading from a terminal
// or a test buffer, it just uses the session's Stdin/Stdout.
package session

import (
	"io"

	"kuasarctl/internal/metrics"
	"kuasarctl/util"
)

// Session encapsulates the runtime context for one channel.
// Capabilities operate on sessions rather than raw connections.
type Session struct {
	Channel io.ReadWriteCloser
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Cancel is shared by the relay workers and the signal watcher.
	// It belongs to this session only.
	Cancel *CancelFlag
}

// New creates a Session bound to the given channel and I/O pair with a
// fresh cancellation flag.
func New(ch io.ReadWriteCloser, stdin io.Reader, stdout io.Writer, logger *util.Logger) *Session {
	return &Session{
		Channel: ch,
		Stdin:   stdin,
		Stdout:  stdout,
		Logger:  logger,
		Cancel:  NewCancelFlag(),
	}
}
