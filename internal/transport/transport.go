// Package transport provides abstractions for reaching a control
// socket.  Transports handle the "how" of getting a byte stream to the
// socket (locally, or through an SSH session on the sandbox's node)
// independent of the handshake and relay that run over it.
package transport

import (
	"context"
	"net"
)

// Dialer opens connections to control sockets.  Implementations
// include a local unix-socket dialer and an SSH dialer that reaches
// sockets on a remote node.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
