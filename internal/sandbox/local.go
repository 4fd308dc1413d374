package sandbox

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// DefaultSocketName is the control socket file inside each sandbox
// directory.
const DefaultSocketName = "task.socket"

// LocalSource scans a directory on this host: one subdirectory per
// sandbox, each holding SocketName.
type LocalSource struct {
	BaseDir    string
	SocketName string
}

// NewLocalSource returns a LocalSource.  An empty socketName selects
// DefaultSocketName.
func NewLocalSource(baseDir, socketName string) *LocalSource {
	if socketName == "" {
		socketName = DefaultSocketName
	}
	return &LocalSource{BaseDir: baseDir, SocketName: socketName}
}

// Candidates implements Source.
func (s *LocalSource) Candidates(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		dir := filepath.Join(s.BaseDir, e.Name())
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, s.SocketName)); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

// ControlPath implements Source.  The id is scoped to BaseDir so a
// crafted id cannot escape it.
func (s *LocalSource) ControlPath(id string) (string, error) {
	return securejoin.SecureJoin(s.BaseDir, filepath.Join(id, s.SocketName))
}

// Location implements Source.
func (s *LocalSource) Location() string { return s.BaseDir }
