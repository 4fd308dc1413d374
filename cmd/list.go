package cmd

import (
	"github.com/spf13/cobra"

	"kuasarctl/config"
	"kuasarctl/internal/core"
	"kuasarctl/util"
)

func newListCmd(parsed *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sandboxes with a debug console socket",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, parsed)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := util.NewLogger(cfg.Verbose)
			mode, err := core.BuildList(cfg, logger)
			if err != nil {
				return err
			}
			if lm, ok := mode.(*core.ListMode); ok {
				lm.Stdout = cmd.OutOrStdout()
			}
			return mode.Run(cmd.Context())
		},
	}
	bindList(cmd.Flags(), parsed)
	bindSSH(cmd.Flags(), parsed)
	return cmd
}
