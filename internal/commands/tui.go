package commands

import (
	"context"
	"flag"
	"io"

	"tasknova/internal/exitcode"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd starts the interactive client.
type TUICmd struct{}

func (c *TUICmd) Name() string            { return "tui" }
func (c *TUICmd) Aliases() []string       { return []string{"app"} }
func (c *TUICmd) Synopsis() string        { return "Open the interactive client" }
func (c *TUICmd) Usage() string           { return "tasknova tui [common flags]" }
func (c *TUICmd) Route() navigation.Route { return "" }
func (c *TUICmd) NeedsBackend() bool      { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	err := tui.Run(ctx, tui.Options{
		Auth:    env.Backend.Auth(),
		Session: env.Session,
		Tasks:   env.Tasks,
		Logger:  env.Logger,
		In:      env.In,
		Out:     out,
	})
	if err != nil {
		output.Error(errOut, "%v", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
