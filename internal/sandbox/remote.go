package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Runner executes a shell command on a remote node and returns its
// standard output.
type Runner interface {
	Output(ctx context.Context, cmd string) ([]byte, error)
}

// RemoteSource lists sandboxes on a node reached through Runner.
// Paths are POSIX paths on that node.
type RemoteSource struct {
	Runner     Runner
	Host       string
	BaseDir    string
	SocketName string
}

// NewRemoteSource returns a RemoteSource.  An empty socketName selects
// DefaultSocketName.
func NewRemoteSource(r Runner, host, baseDir, socketName string) *RemoteSource {
	if socketName == "" {
		socketName = DefaultSocketName
	}
	return &RemoteSource{Runner: r, Host: host, BaseDir: baseDir, SocketName: socketName}
}

// listCommand prints the name of every subdirectory of BaseDir that
// holds SocketName.  A missing directory prints nothing.
func (s *RemoteSource) listCommand() string {
	return fmt.Sprintf(`for d in %s/*/; do [ -e "${d}"%s ] && basename "$d"; done; true`,
		shellquote.Join(strings.TrimRight(s.BaseDir, "/")),
		shellquote.Join(s.SocketName))
}

// Candidates implements Source.
func (s *RemoteSource) Candidates(ctx context.Context) ([]string, error) {
	out, err := s.Runner.Output(ctx, s.listCommand())
	if err != nil {
		return nil, fmt.Errorf("list sandboxes on %s: %w", s.Host, err)
	}

	var ids []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}

// ControlPath implements Source.
func (s *RemoteSource) ControlPath(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid sandbox id %q", id)
	}
	return path.Join(s.BaseDir, id, s.SocketName), nil
}

// Location implements Source.
func (s *RemoteSource) Location() string {
	return s.Host + ":" + s.BaseDir
}
