package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trading-coach/internal/cli"
	"trading-coach/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewLogger()
	if err := cli.NewRootCmd(logger).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
