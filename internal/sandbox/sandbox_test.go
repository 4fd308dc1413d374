package sandbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	kerr "kuasarctl/internal/errors"
)

// makePods creates one directory per id, each with a socket file.
func makePods(t *testing.T, ids ...string) string {
	t.Helper()
	base := t.TempDir()
	for _, id := range ids {
		dir := filepath.Join(base, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, DefaultSocketName), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

func TestResolve_Scenario(t *testing.T) {
	base := makePods(t, "pod-001", "pod-002", "pod-abc-123")

	ref, err := Resolve(base, "pod-abc")
	if err != nil {
		t.Fatalf("Resolve(pod-abc): %v", err)
	}
	if ref.ID != "pod-abc-123" {
		t.Errorf("ID = %q, want pod-abc-123", ref.ID)
	}
	want := filepath.Join(base, "pod-abc-123", DefaultSocketName)
	if ref.ControlPath != want {
		t.Errorf("ControlPath = %q, want %q", ref.ControlPath, want)
	}

	_, err = Resolve(base, "pod")
	if !kerr.IsKind(err, kerr.KindAmbiguousPrefix) {
		t.Fatalf("Resolve(pod) err = %v, want ambiguous", err)
	}
	var e *kerr.Error
	errors.As(err, &e)
	if !reflect.DeepEqual(e.Candidates, []string{"pod-001", "pod-002", "pod-abc-123"}) {
		t.Errorf("candidates = %v", e.Candidates)
	}
	for _, id := range e.Candidates {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("message should name %s: %q", id, err.Error())
		}
	}
	if !strings.Contains(err.Error(), "Please provide a more specific prefix.") {
		t.Errorf("message = %q", err.Error())
	}

	_, err = Resolve(base, "zzz")
	if !kerr.IsKind(err, kerr.KindNotFound) {
		t.Fatalf("Resolve(zzz) err = %v, want not found", err)
	}
	if !strings.Contains(err.Error(), `No pod found with prefix "zzz". Available pods:`) ||
		!strings.Contains(err.Error(), "  pod-002") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestResolve_ExactMatchWins(t *testing.T) {
	base := makePods(t, "pod", "pod-1", "pod-2")
	ref, err := Resolve(base, "pod")
	if err != nil {
		t.Fatalf("exact match should win: %v", err)
	}
	if ref.ID != "pod" {
		t.Errorf("ID = %q, want pod", ref.ID)
	}
}

func TestResolve_CaseSensitive(t *testing.T) {
	base := makePods(t, "Pod-A")
	if _, err := Resolve(base, "pod"); !kerr.IsKind(err, kerr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestResolve_NoPods(t *testing.T) {
	base := makePods(t)
	_, err := Resolve(base, "x")
	if !kerr.IsKind(err, kerr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	want := "No pods found in " + base + ". Please check if any pods are running."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
	if kerr.ExitCode(err) != kerr.ExitResolution {
		t.Errorf("exit code = %d", kerr.ExitCode(err))
	}
}

func TestList_MissingBaseDir(t *testing.T) {
	ids, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("missing base dir should not error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want empty", ids)
	}
}

func TestList_SkipsDirsWithoutSocket(t *testing.T) {
	base := makePods(t, "b-pod", "a-pod")
	if err := os.Mkdir(filepath.Join(base, "stale"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "not-a-dir"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	ids, err := List(base)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"a-pod", "b-pod"}) {
		t.Errorf("ids = %v, want sorted [a-pod b-pod]", ids)
	}

	again, _ := List(base)
	if !reflect.DeepEqual(ids, again) {
		t.Error("List should be stable for a given snapshot")
	}
}

func TestList_NoCaching(t *testing.T) {
	base := makePods(t, "pod-1")
	if _, err := Resolve(base, "pod-2"); err == nil {
		t.Fatal("pod-2 should not exist yet")
	}
	makeIn(t, base, "pod-2")
	if _, err := Resolve(base, "pod-2"); err != nil {
		t.Fatalf("new pod should be seen immediately: %v", err)
	}
}

func makeIn(t *testing.T, base, id string) {
	t.Helper()
	dir := filepath.Join(base, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultSocketName), nil, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLocalSource_ControlPathStaysInBase(t *testing.T) {
	base := t.TempDir()
	src := NewLocalSource(base, "")
	p, err := src.ControlPath("../../etc")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p, base) {
		t.Errorf("ControlPath escaped base dir: %q", p)
	}
}

// ── RemoteSource ─────────────────────────────────────────────────────

type fakeRunner struct {
	cmd string
	out string
	err error
}

func (f *fakeRunner) Output(_ context.Context, cmd string) ([]byte, error) {
	f.cmd = cmd
	return []byte(f.out), f.err
}

func TestRemoteSource(t *testing.T) {
	run := &fakeRunner{out: "pod-b\npod-a\n\n"}
	r := NewResolver(NewRemoteSource(run, "node-1", "/run/kuasar dir/", ""))

	ids, err := r.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"pod-a", "pod-b"}) {
		t.Errorf("ids = %v", ids)
	}
	if !strings.Contains(run.cmd, `'/run/kuasar dir'/*/`) {
		t.Errorf("base dir not quoted: %s", run.cmd)
	}
	if !strings.Contains(run.cmd, "task.socket") {
		t.Errorf("socket name missing: %s", run.cmd)
	}

	ref, err := r.Resolve(context.Background(), "pod-a")
	if err != nil {
		t.Fatal(err)
	}
	if ref.ControlPath != "/run/kuasar dir/pod-a/task.socket" {
		t.Errorf("ControlPath = %q", ref.ControlPath)
	}
}

func TestRemoteSource_Errors(t *testing.T) {
	src := NewRemoteSource(&fakeRunner{err: errors.New("exit status 255")}, "node-1", "/run/kuasar", "")
	if _, err := src.Candidates(context.Background()); err == nil || !strings.Contains(err.Error(), "node-1") {
		t.Errorf("err = %v", err)
	}
	if _, err := src.ControlPath("../x"); err == nil {
		t.Error("ids with slashes should be rejected")
	}

	_, err := NewResolver(NewRemoteSource(&fakeRunner{}, "node-1", "/run/kuasar", "")).
		Resolve(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "node-1:/run/kuasar") {
		t.Errorf("err = %v", err)
	}
}
