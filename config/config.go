// Package config defines the runtime configuration for kuasarctl and
// provides helpers for parsing SSH gateway specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mode selects what runs over the channel once the handshake succeeds.
type Mode int

const (
	// ModePlain relays stdin/stdout without touching the terminal.
	ModePlain Mode = iota
	// ModeInteractive puts the terminal in raw mode and relays keystrokes.
	ModeInteractive
	// ModeCommand sends a single command line and prints its output.
	ModeCommand
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeCommand:
		return "command"
	default:
		return "plain"
	}
}

// Output formats accepted by "kuasarctl list".
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds every tuneable for a single kuasarctl invocation.
type Config struct {
	// ── Target ───────────────────────────────────────────────────────
	PodID      string // id or unique prefix
	Port       uint32 // in-sandbox service port
	SocketDir  string // one subdirectory per sandbox
	SocketName string // control socket file inside each subdirectory

	// ── Session ──────────────────────────────────────────────────────
	TTY         bool     // -t
	Interactive bool     // -i
	Command     []string // trailing arguments; one-shot mode when set

	// ── Handshake ────────────────────────────────────────────────────
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	HandshakeRetries int
	RetryDelay       time.Duration

	// ── Relay ────────────────────────────────────────────────────────
	PollInterval     time.Duration
	UpstreamChunk    int
	DownstreamChunk  int
	MaxCommandLength int

	// ── SSH gateway ──────────────────────────────────────────────────
	ViaSpec        string // raw user@host[:port] from --via
	ViaEnabled     bool
	ViaUser        string
	ViaHost        string
	ViaPort        int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose    int
	Output     string // list format
	ConfigFile string
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Port:             DefaultPort,
		SocketDir:        DefaultSocketDir,
		SocketName:       DefaultSocketName,
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		HandshakeRetries: DefaultHandshakeRetries,
		RetryDelay:       DefaultRetryDelay,
		PollInterval:     DefaultPollInterval,
		UpstreamChunk:    DefaultUpstreamChunk,
		DownstreamChunk:  DefaultDownstreamChunk,
		MaxCommandLength: DefaultMaxCommandLength,
		Output:           OutputText,
	}
}

// Mode reports the session mode implied by -t, -i and the trailing
// command.  A command always wins; a terminal session needs both -t
// and -i.
func (c *Config) Mode() Mode {
	switch {
	case len(c.Command) > 0:
		return ModeCommand
	case c.TTY && c.Interactive:
		return ModeInteractive
	default:
		return ModePlain
	}
}

// CommandLine joins the trailing arguments the way a shell prompt
// would receive them.
func (c *Config) CommandLine() string {
	return strings.Join(c.Command, " ")
}

// ── SSH gateway spec parser ──────────────────────────────────────────

// viaRe matches [user@]host[:port].
var viaRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseViaSpec extracts user, host, and port from a string such as
// "root@node-1.example.com:2222".  Port defaults to 22.
func ParseViaSpec(spec string) (user, host string, port int, err error) {
	m := viaRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid gateway spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid gateway port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("gateway host is required")
	}
	return user, host, port, nil
}

// ApplyViaSpec parses ViaSpec (if set) into the Via* fields.
func (c *Config) ApplyViaSpec() error {
	if c.ViaSpec == "" {
		c.ViaEnabled = false
		return nil
	}
	user, host, port, err := ParseViaSpec(c.ViaSpec)
	if err != nil {
		return err
	}
	c.ViaEnabled = true
	c.ViaUser = user
	c.ViaHost = host
	c.ViaPort = port
	return nil
}
