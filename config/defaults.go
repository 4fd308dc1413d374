package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.  The handshake and relay timings are defaults, not protocol
// constants: the debug console agent does not depend on them.

const (
	// DefaultPort is the in-sandbox debug console port.
	DefaultPort uint32 = 1025

	// DefaultSocketDir holds one subdirectory per sandbox.
	DefaultSocketDir = "/run/kuasar"

	// DefaultSocketName is the control socket file inside each
	// sandbox directory.
	DefaultSocketName = "task.socket"

	// DefaultConfigFile is read when present; a missing file is not
	// an error.
	DefaultConfigFile = "/etc/kuasarctl/config.toml"

	// DefaultHandshakeTimeout bounds the whole CONNECT/OK exchange.
	DefaultHandshakeTimeout = 5 * time.Second

	// DefaultWriteTimeout bounds the CONNECT write.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultHandshakeRetries is the number of empty or partial reads
	// tolerated while waiting for OK.
	DefaultHandshakeRetries = 10

	// DefaultRetryDelay is the pause between handshake read attempts.
	DefaultRetryDelay = 100 * time.Millisecond

	// DefaultPollInterval bounds how long a relay worker may block in
	// a read before re-checking the cancellation flag.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultUpstreamChunk is the read size for local input.
	DefaultUpstreamChunk = 1024

	// DefaultDownstreamChunk is the read size for the channel.
	DefaultDownstreamChunk = 4096

	// DefaultMaxCommandLength caps a one-shot command line in bytes.
	DefaultMaxCommandLength = 4096

	// DefaultSSHPort is the standard SSH port for --via.
	DefaultSSHPort = 22

	// DefaultSSHConnTimeout bounds the SSH dial and handshake.
	DefaultSSHConnTimeout = 30 * time.Second
)
