package shutdown

import (
	"io"
	"os"
	"testing"
	"time"

	"kuasarctl/internal/session"
	"kuasarctl/util"
)

func quiet() *util.Logger {
	l := util.NewLogger(0)
	l.SetOutput(io.Discard)
	return l
}

func TestWatch_InterruptRaisesFlag(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	flag := session.NewCancelFlag()
	halt := watch(sigCh, flag, quiet())
	defer halt()

	sigCh <- os.Interrupt
	select {
	case <-flag.Done():
	case <-time.After(time.Second):
		t.Fatal("flag not raised after interrupt")
	}
	if r, _ := flag.Reason(); r != session.ReasonInterrupt {
		t.Errorf("reason = %v, want interrupt", r)
	}
}

func TestWatch_ExitsWhenSessionEnds(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	flag := session.NewCancelFlag()
	halt := watch(sigCh, flag, quiet())

	flag.Raise(session.ReasonRemoteClosed, nil)

	exited := make(chan struct{})
	go func() {
		halt()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("watcher did not exit after the session ended")
	}

	// A late signal must not overwrite the winning reason.
	sigCh <- os.Interrupt
	if r, _ := flag.Reason(); r != session.ReasonRemoteClosed {
		t.Errorf("reason = %v, want remote closed", r)
	}
}

func TestWatch_StopWithoutSignal(t *testing.T) {
	flag := session.NewCancelFlag()
	stop := Watch(flag, quiet())
	stop()
	stop()
	if flag.Raised() {
		t.Error("stop must not raise the flag")
	}
}
