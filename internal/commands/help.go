package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasknova/internal/exitcode"
	"tasknova/internal/navigation"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string            { return "help" }
func (c *HelpCmd) Aliases() []string       { return nil }
func (c *HelpCmd) Synopsis() string        { return "Print usage" }
func (c *HelpCmd) Usage() string           { return "tasknova help" }
func (c *HelpCmd) Route() navigation.Route { return "" }
func (c *HelpCmd) NeedsBackend() bool      { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasknova                                    Show the welcome screen, or your tasks when logged in
  tasknova welcome [common flags]
  tasknova register [common flags] --name <name> --email <email> --password <password>
  tasknova login [common flags] [--email <email> --password <password>]
  tasknova forgetpassword [common flags] --email <email>
  tasknova forgetpassword [common flags] --token <token> --password <new-password>
  tasknova home [common flags]
  tasknova add [common flags] --deadline <YYYY-MM-DD HH:MM> --priority <High|Medium|Low>
               [--description <text>] [--title <title>] [title...]
  tasknova done [common flags] <n|id>
  tasknova rm [common flags] [--yes] <n|id>
  tasknova watch [common flags]
  tasknova logout [common flags] [--yes]
  tasknova tui [common flags]
  tasknova help
  tasknova version

Logged out, only welcome, register, login and forgetpassword are available.
Logged in, only home, add, done, rm, watch and logout are available.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
