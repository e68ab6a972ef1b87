package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeusData/elixir-analyzer/internal/parser"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	g := &globalFlags{}
	err := buildRootCmd(g).ExecuteContext(ctx)
	stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	g.flushTelemetry(flushCtx)
	cancel()
	if rmErr := parser.RemoveScript(); rmErr != nil {
		slog.Warn("parser.script.remove", "err", rmErr)
	}

	if err == nil {
		return
	}
	if !errors.Is(err, errIssuesFound) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
