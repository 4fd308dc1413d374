package tunnel

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"

	kerr "kuasarctl/internal/errors"
	"kuasarctl/internal/sshtest"
)

// withPipeStdin replaces os.Stdin with the read end of a pipe so that
// prompts see a non-terminal.
func withPipeStdin(t *testing.T) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		r.Close()
		w.Close()
	})
}

func writeKey(t *testing.T, path string, priv interface{}, passphrase string) ssh.PublicKey {
	t.Helper()
	var (
		block *pem.Block
		err   error
	)
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	return signer.PublicKey()
}

func TestBuildAuthMethods_ExplicitKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_node")
	sshtest.WriteKey(t, keyPath)

	methods, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath})
	if err != nil {
		t.Fatalf("BuildAuthMethods: %v", err)
	}
	if len(methods) != 1 {
		t.Errorf("got %d methods, want exactly the explicit key", len(methods))
	}
}

func TestBuildAuthMethods_PasswordNeedsTerminal(t *testing.T) {
	withPipeStdin(t)

	_, err := BuildAuthMethods(&SSHConfig{User: "root", Host: "node-1", PromptPass: true})
	if !kerr.Is(err, kerr.ErrNotATerminal) {
		t.Fatalf("err = %v, want ErrNotATerminal", err)
	}
}

func TestBuildAuthMethods_EncryptedKeyNeedsTerminal(t *testing.T) {
	withPipeStdin(t)
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	keyPath := filepath.Join(t.TempDir(), "id_locked")
	writeKey(t, keyPath, priv, "secret")

	_, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath})
	if !kerr.Is(err, kerr.ErrNotATerminal) {
		t.Fatalf("err = %v, want ErrNotATerminal from the passphrase prompt", err)
	}
}

func TestBuildAuthMethods_MissingKey(t *testing.T) {
	if _, err := BuildAuthMethods(&SSHConfig{KeyPath: "/nonexistent/key"}); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestDefaultKeySigners_OrderAndEncrypted(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}

	_, edPriv, _ := ed25519.GenerateKey(rand.Reader)
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	_, lockedPriv, _ := ed25519.GenerateKey(rand.Reader)

	// Written in reverse preference order; id_ecdsa is encrypted.
	rsaSlot := writeKey(t, filepath.Join(dir, "id_rsa"), ecPriv, "")
	writeKey(t, filepath.Join(dir, "id_ecdsa"), lockedPriv, "secret")
	edSlot := writeKey(t, filepath.Join(dir, "id_ed25519"), edPriv, "")

	signers := defaultKeySigners(home)
	if len(signers) != 2 {
		t.Fatalf("got %d signers, want 2 (encrypted key skipped)", len(signers))
	}
	want := []ssh.PublicKey{edSlot, rsaSlot}
	for i, s := range signers {
		if !bytes.Equal(s.PublicKey().Marshal(), want[i].Marshal()) {
			t.Errorf("signer %d is not from %s", i, []string{"id_ed25519", "id_rsa"}[i])
		}
	}
}

func TestDefaultKeySigners_NoSSHDir(t *testing.T) {
	if got := defaultKeySigners(t.TempDir()); len(got) != 0 {
		t.Errorf("got %d signers from an empty home", len(got))
	}
}

func TestHostKeyCallback(t *testing.T) {
	if cb, err := hostKeyCallback(&SSHConfig{}); err != nil || cb == nil {
		t.Fatalf("insecure callback: cb=%v err=%v", cb != nil, err)
	}

	_, err := hostKeyCallback(&SSHConfig{StrictHostKey: true, KnownHosts: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Error("strict checking with a missing known_hosts file should fail")
	}
}
