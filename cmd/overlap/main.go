package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akmonengine/overlap/internal/cli"
	"github.com/akmonengine/overlap/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:])
	stop()
	_ = observability.Sync()

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		os.Exit(0)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
