package cmd

import (
	"github.com/spf13/cobra"

	"kuasarctl/config"
	"kuasarctl/internal/core"
	"kuasarctl/util"
)

func newExecCmd(parsed *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [flags] POD_ID [COMMAND...]",
		Short: "Attach to a sandbox debug console",
		Long: `Attach to the debug console of the sandbox whose id starts with POD_ID.

With -t and -i the local terminal is put into raw mode for an
interactive shell.  With a trailing COMMAND the command is sent once
and its output printed until the sandbox closes the connection.
Otherwise stdin and stdout are relayed as plain byte streams.`,
		Example: `  kuasarctl exec -ti 3f2a
  kuasarctl exec 3f2a cat /proc/meminfo
  kuasarctl exec --via root@node-1 -ti 3f2a
  echo uptime | kuasarctl exec 3f2a`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, parsed)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.PodID = args[0]
				cfg.Command = args[1:]
			}
			if err := cfg.ValidateExec(); err != nil {
				return err
			}

			logger := util.NewLogger(cfg.Verbose)
			logger.Verbose("kuasarctl %s", versionString())
			if cfg.ConfigFile != "" {
				logger.Debug("config file: %s", cfg.ConfigFile)
			}
			logger.Debug("mode: %s", cfg.Mode())

			mode, err := core.Build(cfg, logger)
			if err != nil {
				return err
			}
			if am, ok := mode.(*core.AttachMode); ok {
				am.Stdin = cmd.InOrStdin()
				am.Stdout = cmd.OutOrStdout()
			}
			return mode.Run(cmd.Context())
		},
	}

	// Everything after POD_ID belongs to the remote command.
	cmd.Flags().SetInterspersed(false)
	bindExec(cmd.Flags(), parsed)
	bindSSH(cmd.Flags(), parsed)
	return cmd
}
