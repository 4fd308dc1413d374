// Package sandbox maps a user-supplied pod id or unique prefix to the
// control socket of exactly one sandbox.
//
// Candidates are recomputed on every call: sandboxes come and go
// between invocations, so nothing is cached.
package sandbox

import (
	"context"
	"fmt"
	"sort"
	"strings"

	kerr "kuasarctl/internal/errors"
)

// Ref identifies one resolved sandbox.  It is never mutated after
// resolution.
type Ref struct {
	ID          string `json:"id" yaml:"id"`
	ControlPath string `json:"control_path" yaml:"control_path"`
}

// Source enumerates candidate sandboxes and locates their control
// sockets.
type Source interface {
	// Candidates returns every id whose directory holds a control
	// socket.  A missing base directory yields an empty set.
	Candidates(ctx context.Context) ([]string, error)

	// ControlPath returns the control socket path for id.
	ControlPath(id string) (string, error)

	// Location describes the base directory for user messages.
	Location() string
}

// Resolver resolves prefixes against a Source.
type Resolver struct {
	Source Source
}

// NewResolver returns a Resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{Source: src}
}

// List returns the sorted candidate ids.
func (r *Resolver) List(ctx context.Context) ([]string, error) {
	ids, err := r.Source.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Resolve returns the sandbox whose id equals prefix, or else the only
// id starting with prefix.  Comparison is byte-wise and case-sensitive.
func (r *Resolver) Resolve(ctx context.Context, prefix string) (Ref, error) {
	ids, err := r.List(ctx)
	if err != nil {
		return Ref{}, err
	}

	id, err := match(ids, prefix, r.Source.Location())
	if err != nil {
		return Ref{}, err
	}
	path, err := r.Source.ControlPath(id)
	if err != nil {
		return Ref{}, err
	}
	return Ref{ID: id, ControlPath: path}, nil
}

// match picks one id from a sorted candidate list.
func match(ids []string, prefix, location string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if len(ids) == 0 {
			return "", kerr.NotFound(fmt.Sprintf(
				"No pods found in %s. Please check if any pods are running.", location), nil)
		}
		return "", kerr.NotFound(fmt.Sprintf(
			"No pod found with prefix %q. Available pods:\n%s", prefix, indent(ids)), ids)
	default:
		return "", kerr.Ambiguous(fmt.Sprintf(
			"Pod prefix %q matches multiple pods:\n%s\nPlease provide a more specific prefix.",
			prefix, indent(matches)), matches)
	}
}

func indent(ids []string) string {
	return "  " + strings.Join(ids, "\n  ")
}

// List returns the sorted ids under baseDir using the default socket
// file name.
func List(baseDir string) ([]string, error) {
	return NewResolver(NewLocalSource(baseDir, "")).List(context.Background())
}

// Resolve resolves prefix under baseDir using the default socket file
// name.
func Resolve(baseDir, prefix string) (Ref, error) {
	return NewResolver(NewLocalSource(baseDir, "")).Resolve(context.Background(), prefix)
}
