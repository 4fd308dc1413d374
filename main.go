// kuasarctl attaches to the debug console of a Kuasar sandbox.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kuasarctl/cmd"
	kerr "kuasarctl/internal/errors"
)

func main() {
	// SIGINT is handled per session so an interrupt ends the relay
	// cleanly and still restores the terminal.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	err := cmd.Execute(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "kuasarctl: %v\n", err)
	}
	cancel()
	os.Exit(kerr.ExitCode(err))
}
