package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/retry"
	"kuasarctl/tunnel"
	"kuasarctl/util"
)

// SSHDialer reaches control sockets on a remote node.  The tunnel is
// connected lazily on the first Dial or Output call and torn down on
// Close.
type SSHDialer struct {
	tunnel    tunnel.Tunnel
	config    *tunnel.SSHConfig
	logger    *util.Logger
	mu        sync.Mutex
	connected bool

	// Backoff paces reconnects after network-level failures.  Auth
	// and host key failures are never retried.
	Backoff *retry.Policy
}

// NewSSHDialer creates a dialer that reaches sockets through an SSH
// session.  The tunnel is not connected until first use.
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	return &SSHDialer{
		tunnel:  tunnel.NewSSHTunnel(cfg, logger),
		config:  cfg,
		logger:  logger,
		Backoff: retry.Gateway(),
	}
}

// connect establishes the SSH tunnel if not already connected.
func (d *SSHDialer) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected && d.tunnel.IsAlive() {
		return nil
	}

	d.logger.Verbose("establishing SSH session to %s@%s:%d",
		d.config.User, d.config.Host, d.config.Port)

	err := d.Backoff.Do(ctx, func(attempt int) error {
		err := d.tunnel.Connect(ctx)
		if err == nil {
			return nil
		}
		var se *kerr.SSHError
		if errors.As(err, &se) && se.Op == "dial" {
			d.logger.Verbose("SSH attempt %d failed: %v", attempt, err)
			return err
		}
		return retry.Permanent(err)
	})
	if err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}

	d.connected = true
	d.logger.Verbose("SSH session established")
	return nil
}

// Dial connects to a socket on the node, lazily establishing the
// tunnel on the first call.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "" {
		network = "unix"
	}
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Output runs cmd on the node.  It lets the dialer list sandboxes on
// the node it reaches.
func (d *SSHDialer) Output(ctx context.Context, cmd string) ([]byte, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Output(ctx, cmd)
}

// Host returns the node name for user messages.
func (d *SSHDialer) Host() string { return d.config.Host }

// Close tears down the underlying SSH tunnel.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		d.connected = false
		return d.tunnel.Close()
	}
	return nil
}
