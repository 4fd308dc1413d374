// Package shutdown turns a keyboard interrupt into a session
// cancellation.
//
// The watcher only raises the session's cancel flag.  It never closes
// the channel or touches the terminal; the relay workers notice the
// flag at their next poll and the capability restores the terminal
// once they have stopped.
package shutdown

import (
	"os"
	"os/signal"
	"sync"

	"kuasarctl/internal/session"
	"kuasarctl/util"
)

// Watch starts watching for SIGINT on behalf of flag.  The watcher
// exits after the first interrupt, when flag is raised by anyone else,
// or when stop is called.  stop waits for the watcher to exit and
// restores default SIGINT handling; it is safe to call more than once.
func Watch(flag *session.CancelFlag, logger *util.Logger) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	halt := watch(sigCh, flag, logger)
	return func() {
		halt()
		signal.Stop(sigCh)
	}
}

// watch runs the watcher against an arbitrary signal source.
func watch(sigCh <-chan os.Signal, flag *session.CancelFlag, logger *util.Logger) (halt func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		select {
		case sig := <-sigCh:
			logger.Verbose("received %v, stopping session", sig)
			flag.Interrupt()
		case <-flag.Done():
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
