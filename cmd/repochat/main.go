// Command repochat indexes local code repositories and answers questions
// about them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/repochat/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version string

func main() {
	// API keys may live in a local .env file.
	_ = godotenv.Load()

	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
