// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"tasknova/internal/config"
	"tasknova/internal/navigation"
	"tasknova/internal/service"
	"tasknova/internal/session"
	"tasknova/internal/tasks"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Route returns the screen the command acts on. The dispatcher refuses
	// the command when the screen is not reachable for the current session.
	// Commands outside the screen flow return "".
	Route() navigation.Route

	// NeedsBackend returns true if the command talks to the auth provider or
	// the task store. help and version return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// env.Config is always set. The backend, session holder and task
	// bridge are nil if NeedsBackend() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env is everything a command runs against.
type Env struct {
	Config  *config.Config
	Logger  *zap.Logger
	Backend service.Backend
	Session *session.Holder
	Tasks   *tasks.Bridge

	// In answers confirmation prompts. A nil In declines every prompt.
	In io.Reader
}
