package core

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"kuasarctl/config"
	"kuasarctl/internal/capability"
	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/sandbox"
	"kuasarctl/internal/transport"
	"kuasarctl/util"
)

func execConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.PodID = "pod-001"
	cfg.SocketDir = t.TempDir()
	return cfg
}

func TestBuild_Modes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*config.Config)
		want  interface{}
	}{
		{"plain", func(c *config.Config) {}, &capability.Plain{}},
		{"tty only", func(c *config.Config) { c.TTY = true }, &capability.Plain{}},
		{"interactive", func(c *config.Config) { c.TTY, c.Interactive = true, true }, &capability.Interactive{}},
		{"command", func(c *config.Config) { c.Command = []string{"ls", "-la"} }, &capability.Command{}},
		{"command wins over tty", func(c *config.Config) {
			c.TTY, c.Interactive = true, true
			c.Command = []string{"ps"}
		}, &capability.Command{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := execConfig(t)
			tt.setup(cfg)
			mode, err := Build(cfg, util.NewLogger(0))
			if err != nil {
				t.Fatal(err)
			}
			am, ok := mode.(*AttachMode)
			if !ok {
				t.Fatalf("expected *AttachMode, got %T", mode)
			}
			if got, want := typeName(am.Capability), typeName(tt.want); got != want {
				t.Errorf("capability = %s, want %s", got, want)
			}
			if !am.LocalSockets || !am.WatchInterrupts {
				t.Error("local attach should stat sockets and watch interrupts")
			}
			if _, ok := am.Client.Dialer.(*transport.UnixDialer); !ok {
				t.Errorf("dialer = %T, want *transport.UnixDialer", am.Client.Dialer)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *capability.Plain:
		return "plain"
	case *capability.Interactive:
		return "interactive"
	case *capability.Command:
		return "command"
	default:
		return "unknown"
	}
}

func TestBuild_CommandRejectedEarly(t *testing.T) {
	cfg := execConfig(t)
	cfg.Command = []string{strings.Repeat("x", cfg.MaxCommandLength+1)}
	if _, err := Build(cfg, util.NewLogger(0)); !kerr.IsKind(err, kerr.KindConfig) {
		t.Errorf("err = %v, want config error", err)
	}

	cfg.Command = []string{"echo", "a\x00b"}
	if _, err := Build(cfg, util.NewLogger(0)); !kerr.Is(err, kerr.ErrCommandNull) {
		t.Errorf("err = %v, want ErrCommandNull", err)
	}
}

func TestBuild_Via(t *testing.T) {
	cfg := execConfig(t)
	cfg.ViaSpec = "root@node-1:2222"
	if err := cfg.ApplyViaSpec(); err != nil {
		t.Fatal(err)
	}
	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	am := mode.(*AttachMode)
	d, ok := am.Client.Dialer.(*transport.SSHDialer)
	if !ok {
		t.Fatalf("dialer = %T, want *transport.SSHDialer", am.Client.Dialer)
	}
	if d.Host() != "node-1" {
		t.Errorf("host = %q", d.Host())
	}
	if am.LocalSockets {
		t.Error("remote attach must not stat local sockets")
	}
	if _, ok := am.Resolver.Source.(*sandbox.RemoteSource); !ok {
		t.Errorf("source = %T, want *sandbox.RemoteSource", am.Resolver.Source)
	}
}

func listFixture(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	for _, id := range []string{"pod-b", "pod-a"} {
		dir := filepath.Join(base, id)
		os.MkdirAll(dir, 0o755)
		os.WriteFile(filepath.Join(dir, sandbox.DefaultSocketName), nil, 0o644)
	}
	os.MkdirAll(filepath.Join(base, "no-socket"), 0o755)
	return base
}

func runList(t *testing.T, base, format string) string {
	t.Helper()
	cfg := config.Default()
	cfg.SocketDir = base
	cfg.Output = format
	mode, err := BuildList(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	mode.(*ListMode).Stdout = &out
	if err := mode.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestListMode_Text(t *testing.T) {
	if got := runList(t, listFixture(t), config.OutputText); got != "pod-a\npod-b\n" {
		t.Errorf("text output = %q", got)
	}
}

func TestListMode_JSON(t *testing.T) {
	base := listFixture(t)
	var refs []sandbox.Ref
	if err := json.Unmarshal([]byte(runList(t, base, config.OutputJSON)), &refs); err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[0].ID != "pod-a" {
		t.Fatalf("refs = %+v", refs)
	}
	if want := filepath.Join(base, "pod-a", sandbox.DefaultSocketName); refs[0].ControlPath != want {
		t.Errorf("control path = %q, want %q", refs[0].ControlPath, want)
	}
}

func TestListMode_YAML(t *testing.T) {
	var refs []sandbox.Ref
	if err := yaml.Unmarshal([]byte(runList(t, listFixture(t), config.OutputYAML)), &refs); err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[1].ID != "pod-b" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestListMode_Empty(t *testing.T) {
	if got := runList(t, filepath.Join(t.TempDir(), "missing"), config.OutputText); got != "" {
		t.Errorf("output = %q, want empty", got)
	}
	if got := runList(t, t.TempDir(), config.OutputJSON); strings.TrimSpace(got) != "[]" {
		t.Errorf("json output = %q, want []", got)
	}
}
