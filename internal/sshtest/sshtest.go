// Package sshtest runs an in-process SSH node for tests.  The node
// accepts any client, answers exec requests with canned output and
// forwards direct-streamlocal channels to unix sockets on this host.
package sshtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"net"
	"os"
	"strconv"
	"testing"

	"golang.org/x/crypto/ssh"
)

// Node is a running test SSH server.
type Node struct {
	Host string
	Port int

	// Execs receives every command the node was asked to run.
	Execs chan string

	output string
}

// Start serves on a loopback port until the test ends.  Every exec
// request prints output and exits 0.
func Start(t testing.TB, output string) *Node {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &ssh.ServerConfig{NoClientAuth: true}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	addr := ln.Addr().(*net.TCPAddr)
	n := &Node{Host: addr.IP.String(), Port: addr.Port, Execs: make(chan string, 16), output: output}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go n.serve(c, cfg)
		}
	}()
	return n
}

// Addr returns host:port.
func (n *Node) Addr() string { return net.JoinHostPort(n.Host, strconv.Itoa(n.Port)) }

func (n *Node) serve(c net.Conn, cfg *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(c, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)
	for nc := range chans {
		switch nc.ChannelType() {
		case "session":
			go n.session(nc)
		case "direct-streamlocal@openssh.com":
			go streamlocal(nc)
		default:
			nc.Reject(ssh.UnknownChannelType, "unsupported") //nolint:errcheck
		}
	}
}

func (n *Node) session(nc ssh.NewChannel) {
	ch, reqs, err := nc.Accept()
	if err != nil {
		return
	}
	defer ch.Close()
	for req := range reqs {
		if req.Type != "exec" {
			req.Reply(false, nil) //nolint:errcheck
			continue
		}
		var payload struct{ Command string }
		ssh.Unmarshal(req.Payload, &payload) //nolint:errcheck
		req.Reply(true, nil)                 //nolint:errcheck
		select {
		case n.Execs <- payload.Command:
		default:
		}
		io.WriteString(ch, n.output)                                                  //nolint:errcheck
		ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0})) //nolint:errcheck
		return
	}
}

func streamlocal(nc ssh.NewChannel) {
	var payload struct {
		SocketPath string
		Reserved0  string
		Reserved1  uint32
	}
	if err := ssh.Unmarshal(nc.ExtraData(), &payload); err != nil {
		nc.Reject(ssh.ConnectionFailed, err.Error()) //nolint:errcheck
		return
	}
	target, err := net.Dial("unix", payload.SocketPath)
	if err != nil {
		nc.Reject(ssh.ConnectionFailed, err.Error()) //nolint:errcheck
		return
	}
	ch, reqs, err := nc.Accept()
	if err != nil {
		target.Close()
		return
	}
	go ssh.DiscardRequests(reqs)
	go func() {
		io.Copy(target, ch) //nolint:errcheck
		target.(*net.UnixConn).CloseWrite()
	}()
	io.Copy(ch, target) //nolint:errcheck
	ch.Close()
	target.Close()
}

// WriteKey writes a fresh unencrypted ed25519 client key to path.
func WriteKey(t testing.TB, path string) ssh.PublicKey {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "kuasarctl-test")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return sshPub
}
