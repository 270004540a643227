package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasknova/internal/exitcode"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
)

// AppName is the name shown on the welcome screen.
const AppName = "TaskNova!"

func init() {
	Register(&WelcomeCmd{})
}

// WelcomeCmd implements the welcome screen.
type WelcomeCmd struct{}

func (c *WelcomeCmd) Name() string            { return "welcome" }
func (c *WelcomeCmd) Aliases() []string       { return nil }
func (c *WelcomeCmd) Synopsis() string        { return "Show the welcome screen" }
func (c *WelcomeCmd) Usage() string           { return "tasknova welcome [common flags]" }
func (c *WelcomeCmd) Route() navigation.Route { return navigation.Welcome }
func (c *WelcomeCmd) NeedsBackend() bool      { return true }

func (c *WelcomeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WelcomeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	output.Header(out, "Welcome to "+AppName)
	fmt.Fprintln(out, "Organize your tasks and never miss a deadline.")
	fmt.Fprintln(out, "")
	for _, cmd := range DefaultRegistry.Available(navigation.Unauthenticated) {
		if cmd.Route() == "" || cmd.Route() == c.Route() {
			continue
		}
		fmt.Fprintf(out, "  tasknova %-16s %s\n", cmd.Name(), cmd.Synopsis())
	}
	return exitcode.Success
}
