package config

// loader.go - configuration loading from the environment and the
// config file.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/)
//   2. Environment variables  (LoadFromEnv)
//   3. Config file  (LoadFile)
//   4. Defaults   (defaults.go)

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the KUASARCTL_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations accept Go
// syntax ("250ms") or a bare number of seconds.

// EnvConfigFile names the config file to read instead of
// DefaultConfigFile.
const EnvConfigFile = "KUASARCTL_CONFIG"

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("KUASARCTL_SOCKET_DIR"); v != "" {
		cfg.SocketDir = v
	}
	if v := os.Getenv("KUASARCTL_SOCKET_NAME"); v != "" {
		cfg.SocketName = v
	}
	if v := envInt("KUASARCTL_PORT"); v > 0 {
		cfg.Port = uint32(v)
	}
	if v := envDuration("KUASARCTL_TIMEOUT"); v > 0 {
		cfg.HandshakeTimeout = v
	}
	if v := envDuration("KUASARCTL_POLL_INTERVAL"); v > 0 {
		cfg.PollInterval = v
	}

	// SSH gateway
	if v := os.Getenv("KUASARCTL_VIA"); v != "" {
		cfg.ViaSpec = v
	}
	if v := os.Getenv("KUASARCTL_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("KUASARCTL_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("KUASARCTL_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("KUASARCTL_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("KUASARCTL_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("KUASARCTL_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── Config file ──────────────────────────────────────────────────────

// fileConfig mirrors the TOML layout.  Durations stay strings so the
// file can use "5s" / "100ms".
type fileConfig struct {
	SocketDir  string `toml:"socket_dir"`
	SocketName string `toml:"socket_name"`
	Port       uint32 `toml:"port"`
	Verbose    int    `toml:"verbose"`

	Handshake struct {
		Timeout      string `toml:"timeout"`
		WriteTimeout string `toml:"write_timeout"`
		Retries      int    `toml:"retries"`
		RetryDelay   string `toml:"retry_delay"`
	} `toml:"handshake"`

	Relay struct {
		PollInterval     string `toml:"poll_interval"`
		UpstreamChunk    int    `toml:"upstream_chunk"`
		DownstreamChunk  int    `toml:"downstream_chunk"`
		MaxCommandLength int    `toml:"max_command_length"`
	} `toml:"relay"`

	SSH struct {
		Via           string `toml:"via"`
		Key           string `toml:"key"`
		Agent         *bool  `toml:"agent"`
		StrictHostKey *bool  `toml:"strict_host_key"`
		KnownHosts    string `toml:"known_hosts"`
	} `toml:"ssh"`
}

// LoadFile decodes the TOML file at path and overlays every key it
// sets onto cfg.  Unknown keys are rejected so typos surface early.
func LoadFile(path string, cfg *Config) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undec[0].String())
	}

	if fc.SocketDir != "" {
		cfg.SocketDir = fc.SocketDir
	}
	if fc.SocketName != "" {
		cfg.SocketName = fc.SocketName
	}
	if fc.Port > 0 {
		cfg.Port = fc.Port
	}
	if fc.Verbose > 0 {
		cfg.Verbose = fc.Verbose
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"handshake.timeout", fc.Handshake.Timeout, &cfg.HandshakeTimeout},
		{"handshake.write_timeout", fc.Handshake.WriteTimeout, &cfg.WriteTimeout},
		{"handshake.retry_delay", fc.Handshake.RetryDelay, &cfg.RetryDelay},
		{"relay.poll_interval", fc.Relay.PollInterval, &cfg.PollInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}

	if fc.Handshake.Retries > 0 {
		cfg.HandshakeRetries = fc.Handshake.Retries
	}
	if fc.Relay.UpstreamChunk > 0 {
		cfg.UpstreamChunk = fc.Relay.UpstreamChunk
	}
	if fc.Relay.DownstreamChunk > 0 {
		cfg.DownstreamChunk = fc.Relay.DownstreamChunk
	}
	if fc.Relay.MaxCommandLength > 0 {
		cfg.MaxCommandLength = fc.Relay.MaxCommandLength
	}

	if fc.SSH.Via != "" {
		cfg.ViaSpec = fc.SSH.Via
	}
	if fc.SSH.Key != "" {
		cfg.SSHKeyPath = fc.SSH.Key
	}
	if fc.SSH.Agent != nil {
		cfg.UseSSHAgent = *fc.SSH.Agent
	}
	if fc.SSH.StrictHostKey != nil {
		cfg.StrictHostKey = *fc.SSH.StrictHostKey
	}
	if fc.SSH.KnownHosts != "" {
		cfg.KnownHostsPath = fc.SSH.KnownHosts
	}
	return nil
}

// Load applies the config file and the environment to cfg, in that
// order.  explicit is the --config flag value; when empty,
// $KUASARCTL_CONFIG and then DefaultConfigFile are tried.  Only the
// default file may be absent.
func Load(cfg *Config, explicit string) error {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	required := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	err := LoadFile(path, cfg)
	switch {
	case err == nil:
		cfg.ConfigFile = path
	case !required && errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	LoadFromEnv(cfg)
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
