package config

import (
	"strings"

	kerr "kuasarctl/internal/errors"
)

// Validate checks the fields shared by every command.  Errors carry
// the offending flag name and, where useful, a hint.
func (c *Config) Validate() error {
	if c.SocketDir == "" {
		return &kerr.ConfigError{
			Field:   "socket-dir",
			Message: "must not be empty",
			Hint:    "the default is " + DefaultSocketDir,
		}
	}
	if c.SocketName == "" || strings.ContainsRune(c.SocketName, '/') {
		return &kerr.ConfigError{
			Field:   "socket-name",
			Value:   c.SocketName,
			Message: "must be a plain file name",
		}
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return &kerr.ConfigError{
			Field:   "output",
			Value:   c.Output,
			Message: "unknown format",
			Hint:    "use text, json or yaml",
		}
	}
	if c.ViaEnabled && c.ViaHost == "" {
		return &kerr.ConfigError{Field: "via", Value: c.ViaSpec, Message: "gateway host is required"}
	}
	return nil
}

// ValidateExec checks everything an exec session needs before any
// resolution or connection is attempted.
func (c *Config) ValidateExec() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.PodID == "" {
		return kerr.Config("pod id required (use --help for usage)")
	}
	if c.Port == 0 {
		return &kerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "must be a positive port number",
			Hint:    "the debug console listens on 1025 by default",
		}
	}
	if c.HandshakeTimeout <= 0 {
		return &kerr.ConfigError{Field: "timeout", Value: c.HandshakeTimeout, Message: "must be positive"}
	}
	if c.WriteTimeout <= 0 {
		return &kerr.ConfigError{Field: "write-timeout", Value: c.WriteTimeout, Message: "must be positive"}
	}
	if c.HandshakeRetries < 1 {
		return &kerr.ConfigError{Field: "handshake-retries", Value: c.HandshakeRetries, Message: "must be at least 1"}
	}
	if c.RetryDelay <= 0 {
		return &kerr.ConfigError{Field: "retry-delay", Value: c.RetryDelay, Message: "must be positive"}
	}
	if c.PollInterval <= 0 {
		return &kerr.ConfigError{
			Field:   "poll-interval",
			Value:   c.PollInterval,
			Message: "must be positive",
			Hint:    "workers re-check cancellation once per interval; 100ms is a good value",
		}
	}
	if c.UpstreamChunk <= 0 || c.DownstreamChunk <= 0 {
		return kerr.Config("relay chunk sizes must be positive")
	}
	if c.MaxCommandLength <= 0 {
		return &kerr.ConfigError{Field: "max-command-length", Value: c.MaxCommandLength, Message: "must be positive"}
	}
	return nil
}
