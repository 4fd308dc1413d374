package tunnel

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/sshtest"
	"kuasarctl/util"
)

func connectTestTunnel(t *testing.T, n *sshtest.Node) *SSHTunnel {
	t.Helper()
	keyPath := filepath.Join(t.TempDir(), "id_test")
	sshtest.WriteKey(t, keyPath)

	logger := util.NewLogger(0)
	logger.SetOutput(io.Discard)
	tun := NewSSHTunnel(&SSHConfig{User: "root", Host: n.Host, Port: n.Port, KeyPath: keyPath, ConnTimeout: 5 * time.Second}, logger)
	if err := tun.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { tun.Close() })
	return tun
}

func TestSSHTunnel_Output(t *testing.T) {
	n := sshtest.Start(t, "pod-a\npod-b\n")
	tun := connectTestTunnel(t, n)

	out, err := tun.Output(context.Background(), "ls /run/kuasar")
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if string(out) != "pod-a\npod-b\n" {
		t.Errorf("output = %q", out)
	}
	if cmd := <-n.Execs; cmd != "ls /run/kuasar" {
		t.Errorf("remote ran %q", cmd)
	}
}

func TestSSHTunnel_DialUnix(t *testing.T) {
	dir, err := os.MkdirTemp("", "kt")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	sock := filepath.Join(dir, "task.socket")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		io.Copy(c, c) //nolint:errcheck
	}()

	tun := connectTestTunnel(t, sshtest.Start(t, ""))
	conn, err := tun.Dial(context.Background(), "unix", sock)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("CONNECT 1025\n")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 13)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "CONNECT 1025\n" {
		t.Errorf("echo = %q", buf)
	}
}

func TestSSHTunnel_NotConnected(t *testing.T) {
	logger := util.NewLogger(0)
	tun := NewSSHTunnel(&SSHConfig{Host: "node-1"}, logger)
	if _, err := tun.Dial(context.Background(), "unix", "/x"); !kerr.Is(err, kerr.ErrNotConnected) {
		t.Errorf("Dial err = %v", err)
	}
	if _, err := tun.Output(context.Background(), "true"); !kerr.Is(err, kerr.ErrNotConnected) {
		t.Errorf("Output err = %v", err)
	}
	if tun.IsAlive() {
		t.Error("unconnected tunnel should not be alive")
	}
}

func TestSSHTunnel_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	keyPath := filepath.Join(t.TempDir(), "id_test")
	sshtest.WriteKey(t, keyPath)
	tun := NewSSHTunnel(&SSHConfig{Host: "127.0.0.1", Port: addr.Port, KeyPath: keyPath, ConnTimeout: time.Second}, util.NewLogger(0))
	err = tun.Connect(context.Background())
	var se *kerr.SSHError
	if !kerr.As(err, &se) || se.Op != "dial" {
		t.Fatalf("err = %v, want ssh dial error", err)
	}
	if !strings.Contains(err.Error(), "127.0.0.1") {
		t.Errorf("message = %q", err.Error())
	}
}
