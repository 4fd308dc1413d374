// Package cmd wires up the CLI and dispatches to the core modes.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"kuasarctl/config"
)

// Execute parses args and runs the selected kuasarctl command.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd(config.Default())
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCmd builds the command tree.  Every flag binds into parsed;
// loadConfig later replays only the flags the user actually set on
// top of the file and environment layers.
func newRootCmd(parsed *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "kuasarctl",
		Short: "Attach to the debug console of a Kuasar sandbox",
		Long: `kuasarctl connects to the debug console of a running Kuasar sandbox
through its hybrid vsock control socket.

The pod can be named by any unique prefix of its id.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	bindPersistent(root.PersistentFlags(), parsed)

	root.AddCommand(
		newExecCmd(parsed),
		newListCmd(parsed),
		newVersionCmd(),
	)
	return root
}

// ── flag binding ─────────────────────────────────────────────────────

func bindPersistent(fs *flag.FlagSet, cfg *config.Config) {
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "Config file (default $KUASARCTL_CONFIG or "+config.DefaultConfigFile+")")
	fs.StringVarP(&cfg.SocketDir, "socket-dir", "d", cfg.SocketDir, "Directory holding one subdirectory per sandbox")
}

func bindExec(fs *flag.FlagSet, cfg *config.Config) {
	// ── session ──────────────────────────────────────────────────
	fs.BoolVarP(&cfg.TTY, "tty", "t", false, "Allocate a terminal (use with -i)")
	fs.BoolVarP(&cfg.Interactive, "interactive", "i", false, "Keep stdin attached (use with -t)")
	fs.Uint32VarP(&cfg.Port, "port", "p", cfg.Port, "Debug console port inside the sandbox")
	fs.StringVar(&cfg.SocketName, "socket-name", cfg.SocketName, "Control socket file name")
	fs.DurationVar(&cfg.HandshakeTimeout, "timeout", cfg.HandshakeTimeout, "Connect and handshake timeout")
}

// bindSSH binds the gateway flags shared by exec and list.
func bindSSH(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.ViaSpec, "via", "", "Reach the sandbox node over SSH: [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", "", "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", false, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", false, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", false, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", "", "Custom known_hosts path")
}

func bindList(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json or yaml")
}

// loadConfig layers defaults, the config file, the environment and
// finally the flags set on cmd.  Flags left at their defaults do not
// override the lower layers.
func loadConfig(cmd *cobra.Command, parsed *config.Config) (*config.Config, error) {
	cfg := config.Default()
	if err := config.Load(cfg, parsed.ConfigFile); err != nil {
		return nil, err
	}

	overlay := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	bindPersistent(overlay, cfg)
	bindExec(overlay, cfg)
	bindSSH(overlay, cfg)
	bindList(overlay, cfg)

	var err error
	cmd.Flags().Visit(func(f *flag.Flag) {
		if err != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		err = overlay.Set(f.Name, f.Value.String())
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyViaSpec(); err != nil {
		return nil, err
	}
	return cfg, nil
}
