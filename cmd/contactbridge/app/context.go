package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentstation/contactbridge/pkg/errors"
)

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM, so
// an interrupted run still releases the sync lock.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ExitOnError prints the error and exits with a status code that tells a
// scheduler apart a lock conflict (another run in flight, try next tick)
// from a real failure.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.IsLockTimeout(err) {
		os.Exit(2)
	}
	os.Exit(1)
}
