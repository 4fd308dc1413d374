package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"kuasarctl/config"
	"kuasarctl/internal/sandbox"
	"kuasarctl/internal/transport"
	"kuasarctl/util"
)

// ListMode prints the sandboxes that currently expose a control
// socket.
type ListMode struct {
	Resolver *sandbox.Resolver
	Format   string
	Logger   *util.Logger

	// Closer releases the transport used for remote listing.
	Closer transport.Dialer

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

// Run lists candidates in the requested format.  An empty result is
// not an error.
func (m *ListMode) Run(ctx context.Context) error {
	if m.Closer != nil {
		defer m.Closer.Close()
	}
	out := m.Stdout
	if out == nil {
		out = os.Stdout
	}

	ids, err := m.Resolver.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		m.Logger.Info("no pods found in %s", m.Resolver.Source.Location())
	}

	refs := make([]sandbox.Ref, 0, len(ids))
	for _, id := range ids {
		p, err := m.Resolver.Source.ControlPath(id)
		if err != nil {
			return err
		}
		refs = append(refs, sandbox.Ref{ID: id, ControlPath: p})
	}

	switch m.Format {
	case config.OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	case config.OutputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(refs); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, r := range refs {
			if _, err := fmt.Fprintln(out, r.ID); err != nil {
				return err
			}
		}
		return nil
	}
}
