package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"slicecheck/internal/cli"
)

// main only wires process state (arguments, streams, signals) into the CLI;
// all flag handling and exit code mapping lives in internal/cli.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
