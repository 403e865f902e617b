package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kernel/autopaste/cmd"
)

// set by the release build
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, version); err != nil {
		os.Exit(1)
	}
}
