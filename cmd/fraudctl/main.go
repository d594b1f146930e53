package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bibbank/fraudml/internal/presentation/cli"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, version, os.Args[1:]); err != nil {
		cancel()
		os.Exit(1)
	}
}
