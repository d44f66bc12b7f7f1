package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wonny/pdcal/cmd/pdcal/commands"
)

// main is the entry point for the pdcal CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/pdcal [command]
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
