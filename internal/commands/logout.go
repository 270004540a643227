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

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct {
	yes bool
}

// SetYes skips the confirmation prompt (for testing).
func (c *LogoutCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *LogoutCmd) Name() string            { return "logout" }
func (c *LogoutCmd) Aliases() []string       { return nil }
func (c *LogoutCmd) Synopsis() string        { return "Sign out" }
func (c *LogoutCmd) Usage() string           { return "tasknova logout [common flags] [--yes]" }
func (c *LogoutCmd) Route() navigation.Route { return navigation.Home }
func (c *LogoutCmd) NeedsBackend() bool      { return true }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	c.yes = false
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ok, err := prompt(env.In, errOut, c.yes).Confirm("Logout", "Are you sure you want to logout?")
	if err != nil {
		output.Error(errOut, "%v", err)
		return exitcode.UserError
	}
	if !ok {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}

	if err := env.Backend.Auth().SignOut(ctx); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		output.OK(out, "ok")
	}
	return exitcode.Success
}
