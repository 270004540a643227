// Package cli parses the command line, prepares the session and dispatches
// to a command.
package cli

import (
	"context"
	"flag"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"tasknova/internal/commands"
	"tasknova/internal/config"
	"tasknova/internal/exitcode"
	"tasknova/internal/logging"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/service"
	"tasknova/internal/session"
	"tasknova/internal/tasks"
)

// BackendFactory creates a Backend from config.
// Used to inject the backend during dispatch. notices receives messages the
// backend shows to the user, such as locally issued reset tokens.
type BackendFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger, notices io.Writer) (service.Backend, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  BackendFactory
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and backend factory.
func NewDispatcher(registry *commands.Registry, factory BackendFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetInput sets where confirmation prompts read answers from.
func (d *Dispatcher) SetInput(in io.Reader) {
	d.in = in
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> the root screen for the current session
	if len(args) == 0 {
		return d.dispatchCommand(ctx, &startCmd{registry: d.registry}, nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		output.Error(errOut, "unknown command: %s", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		output.Error(errOut, "unknown command: %s", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return reportFlagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		output.Error(errOut, "unknown flag: %s", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		output.Error(errOut, "%s", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger, err := logging.New(cfg.Logging, debug, errOut)
	if err != nil {
		output.Error(errOut, "%s", err)
		return exitcode.UserError
	}
	defer logger.Sync()

	env := &commands.Env{Config: cfg, Logger: logger, In: d.in}
	if !cmd.NeedsBackend() {
		return cmd.Run(ctx, env, positionalArgs, out, errOut)
	}

	if d.factory == nil {
		output.Error(errOut, "no backend configured")
		return exitcode.BackendError
	}
	backend, err := d.factory(ctx, cfg, logger, errOut)
	if err != nil {
		logger.Error("opening backend", zap.String("backend", cfg.Backend), zap.Error(err))
		output.Error(errOut, "backend error: %s", err)
		return exitcode.BackendError
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing backend", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	holder := session.New(backend.Auth(), logger)
	if err := holder.Start(ctx); err != nil {
		output.Error(errOut, "%s", err)
		return exitcode.BackendError
	}
	defer holder.Close()

	user, err := holder.Wait(ctx)
	if err != nil {
		output.Error(errOut, "cancelled")
		return exitcode.BackendError
	}

	if code, ok := checkRoute(cmd.Route(), user, errOut); !ok {
		return code
	}

	bridge := tasks.New(backend.Store(), logger)
	defer bridge.Close()

	env.Backend = backend
	env.Session = holder
	env.Tasks = bridge
	return cmd.Run(session.WithHolder(ctx, holder), env, positionalArgs, out, errOut)
}

// checkRoute refuses a screen that is not reachable for user.
func checkRoute(route navigation.Route, user *service.Session, errOut io.Writer) (int, bool) {
	if route == "" {
		return exitcode.Success, true
	}
	state := navigation.StateFor(user)
	if slices.Contains(navigation.Routes(state), route) {
		return exitcode.Success, true
	}
	if user == nil {
		output.Error(errOut, commands.NotLoggedIn)
	} else {
		output.Error(errOut, "already logged in as %s (run: tasknova logout)", user.Email)
	}
	return exitcode.AuthError, false
}

func reportFlagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		if len(parts) > 1 {
			output.Error(errOut, "flag needs an argument: %s", strings.TrimSpace(parts[len(parts)-1]))
			return exitcode.UserError
		}
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		output.Error(errOut, "unknown flag: %s", flagName)
		return exitcode.UserError
	}

	output.Error(errOut, "%s", errStr)
	return exitcode.UserError
}

// startCmd renders the root screen for whoever is signed in.
type startCmd struct {
	registry *commands.Registry
}

func (c *startCmd) Name() string                   { return "tasknova" }
func (c *startCmd) Aliases() []string              { return nil }
func (c *startCmd) Synopsis() string               { return "" }
func (c *startCmd) Usage() string                  { return "tasknova" }
func (c *startCmd) Route() navigation.Route        { return "" }
func (c *startCmd) NeedsBackend() bool             { return true }
func (c *startCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *startCmd) Run(ctx context.Context, env *commands.Env, args []string, out, errOut io.Writer) int {
	route := navigation.Initial(navigation.StateFor(env.Session.User()))
	cmd, ok := c.registry.ForRoute(route)
	if !ok {
		output.Error(errOut, "unknown command: %s", strings.ToLower(string(route)))
		return exitcode.UserError
	}
	// Reset the command's flags to their defaults.
	cmd.RegisterFlags(flag.NewFlagSet(cmd.Name(), flag.ContinueOnError))
	return cmd.Run(ctx, env, nil, out, errOut)
}
