package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X kuasarctl/cmd.version=1.2.0 -X kuasarctl/cmd.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"     //nolint:gochecknoglobals
	commit  = "unknown" //nolint:gochecknoglobals
	date    = "unknown" //nolint:gochecknoglobals
)

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kuasarctl %s\n", versionString())
		},
	}
}
