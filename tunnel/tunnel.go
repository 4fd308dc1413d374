// Package tunnel defines the Tunnel interface and provides an SSH
// implementation backed by golang.org/x/crypto/ssh.
//
// A tunnel lets kuasarctl attach to sandboxes on another node: control
// sockets are dialed on the node itself and candidate sandboxes are
// listed by running a command there.
package tunnel

import (
	"context"
	"net"
)

// Tunnel abstracts an encrypted session to a remote node.
type Tunnel interface {
	// Connect establishes the tunnel to the node.
	Connect(ctx context.Context) error

	// Dial opens a connection to address on the node.  network is
	// "unix" for control sockets.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Output runs cmd on the node and returns its standard output.
	Output(ctx context.Context, cmd string) ([]byte, error)

	// Close tears down the tunnel and frees resources.
	Close() error

	// IsAlive reports whether the underlying connection is still up.
	IsAlive() bool
}
