package transport

import (
	"context"
	"net"
	"time"
)

// UnixDialer connects to control sockets on this host.
type UnixDialer struct {
	Timeout time.Duration
}

// Dial connects to address.  An empty network means "unix".
func (d *UnixDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "" {
		network = "unix"
	}
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless unix dialers.
func (d *UnixDialer) Close() error { return nil }
