package core

import (
	"kuasarctl/config"
	"kuasarctl/internal/capability"
	"kuasarctl/internal/handshake"
	"kuasarctl/internal/metrics"
	"kuasarctl/internal/relay"
	"kuasarctl/internal/sandbox"
	"kuasarctl/internal/transport"
	"kuasarctl/tunnel"
	"kuasarctl/util"
)

// Build constructs an AttachMode from the given configuration.  The
// configuration must already have passed ValidateExec; the one-shot
// command is checked here so it fails before any socket is touched.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if cfg.Mode() == config.ModeCommand {
		if err := capability.ValidateCommand(cfg.CommandLine(), cfg.MaxCommandLength); err != nil {
			return nil, err
		}
	}

	dialer := buildDialer(cfg, logger)
	m := metrics.New()
	r := relay.New(relay.Options{
		PollInterval:    cfg.PollInterval,
		UpstreamChunk:   cfg.UpstreamChunk,
		DownstreamChunk: cfg.DownstreamChunk,
		DrainTimeout:    relay.DefaultOptions().DrainTimeout,
	}, logger, m)

	return &AttachMode{
		Resolver: sandbox.NewResolver(buildSource(cfg, dialer)),
		Client: &handshake.Client{
			Dialer: dialer,
			Options: handshake.Options{
				Timeout:      cfg.HandshakeTimeout,
				WriteTimeout: cfg.WriteTimeout,
				Retries:      cfg.HandshakeRetries,
				RetryDelay:   cfg.RetryDelay,
			},
			Logger: logger,
		},
		Capability:      buildCapability(cfg, r),
		PodID:           cfg.PodID,
		Port:            cfg.Port,
		Logger:          logger,
		Metrics:         m,
		LocalSockets:    !cfg.ViaEnabled,
		WatchInterrupts: true,
	}, nil
}

// BuildList constructs a ListMode from the given configuration.
func BuildList(cfg *config.Config, logger *util.Logger) (Mode, error) {
	dialer := buildDialer(cfg, logger)
	return &ListMode{
		Resolver: sandbox.NewResolver(buildSource(cfg, dialer)),
		Format:   cfg.Output,
		Logger:   logger,
		Closer:   dialer,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.ViaEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.ViaUser,
			Host:          cfg.ViaHost,
			Port:          cfg.ViaPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   config.DefaultSSHConnTimeout,
		}, logger)
	}
	return &transport.UnixDialer{Timeout: cfg.HandshakeTimeout}
}

// buildSource picks where candidate sandboxes are listed from.
func buildSource(cfg *config.Config, dialer transport.Dialer) sandbox.Source {
	if ssh, ok := dialer.(*transport.SSHDialer); ok {
		return sandbox.NewRemoteSource(ssh, ssh.Host(), cfg.SocketDir, cfg.SocketName)
	}
	return sandbox.NewLocalSource(cfg.SocketDir, cfg.SocketName)
}

// buildCapability selects the session mode.
func buildCapability(cfg *config.Config, r *relay.Relay) capability.Capability {
	switch cfg.Mode() {
	case config.ModeCommand:
		return &capability.Command{
			Line:      cfg.CommandLine(),
			MaxLength: cfg.MaxCommandLength,
			Relay:     r,
		}
	case config.ModeInteractive:
		return &capability.Interactive{Relay: r}
	default:
		return &capability.Plain{Relay: r}
	}
}
