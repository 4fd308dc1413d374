// Package core is the orchestration layer.  It composes the resolver,
// transports, handshake and capabilities into complete operational
// modes and provides a builder that selects the right mode from a
// Config.
//
// Architecture layers (bottom → top):
//
//	sandbox/transport  →  handshake  →  capability  →  session  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point between
// parsed flags and a runnable mode.
package core

import "context"

// Mode represents a complete operational mode of kuasarctl (attach or
// list).  Each mode owns its full lifecycle from resolution to
// teardown.
type Mode interface {
	Run(ctx context.Context) error
}
