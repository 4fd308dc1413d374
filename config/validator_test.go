package config

import (
	"strings"
	"testing"

	kerr "kuasarctl/internal/errors"
)

func validExec() *Config {
	cfg := Default()
	cfg.PodID = "pod-abc"
	return cfg
}

func TestValidateExec_OK(t *testing.T) {
	if err := validExec().ValidateExec(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestValidateExec_ErrorMessages verifies that ValidateExec returns
// actionable error messages.
func TestValidateExec_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing pod", func(c *Config) { c.PodID = "" }, "pod id required"},
		{"zero port has hint", func(c *Config) { c.Port = 0 }, "hint:"},
		{"empty socket dir", func(c *Config) { c.SocketDir = "" }, "--socket-dir"},
		{"socket name with slash", func(c *Config) { c.SocketName = "a/b" }, "plain file name"},
		{"zero timeout", func(c *Config) { c.HandshakeTimeout = 0 }, "--timeout"},
		{"zero retries", func(c *Config) { c.HandshakeRetries = 0 }, "at least 1"},
		{"zero poll interval has hint", func(c *Config) { c.PollInterval = 0 }, "hint:"},
		{"zero chunk", func(c *Config) { c.DownstreamChunk = 0 }, "chunk sizes"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "text, json or yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validExec()
			tt.mutate(cfg)
			err := cfg.ValidateExec()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
			if kerr.ExitCode(err) != kerr.ExitGeneral {
				t.Errorf("exit code = %d, want %d", kerr.ExitCode(err), kerr.ExitGeneral)
			}
		})
	}
}

func TestValidate_ListNeedsNoPod(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("list validation should not require a pod id: %v", err)
	}
}
