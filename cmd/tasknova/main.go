// Package main is the entry point for the tasknova CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tasknova/internal/backend/googletasks"
	"tasknova/internal/backend/local"
	"tasknova/internal/cli"
	"tasknova/internal/commands"
	"tasknova/internal/config"
	"tasknova/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openBackend)
	dispatcher.SetInput(os.Stdin)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// openBackend selects the backend named in the config.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger, notices io.Writer) (service.Backend, error) {
	switch cfg.Backend {
	case config.BackendGoogle:
		return googletasks.Open(cfg, logger), nil
	default:
		// There is no mail server; the reset token is shown to the user.
		notify := func(email, token string) {
			fmt.Fprintf(notices, "Password reset token for %s: %s\n", email, token)
			fmt.Fprintln(notices, "Run: tasknova forgetpassword --token <token> --password <new-password>")
		}
		return local.Open(ctx, cfg, logger, notify)
	}
}
