package commands

import (
	"context"
	"flag"
	"io"

	"tasknova/internal/exitcode"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
)

func init() {
	Register(&HomeCmd{})
}

// HomeCmd prints the signed-in user's task list.
type HomeCmd struct{}

func (c *HomeCmd) Name() string            { return "home" }
func (c *HomeCmd) Aliases() []string       { return []string{"list", "ls"} }
func (c *HomeCmd) Synopsis() string        { return "List your tasks" }
func (c *HomeCmd) Usage() string           { return "tasknova home [common flags]" }
func (c *HomeCmd) Route() navigation.Route { return navigation.Home }
func (c *HomeCmd) NeedsBackend() bool      { return true }

func (c *HomeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HomeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		output.Error(errOut, "unexpected argument: %s", args[0])
		return exitcode.UserError
	}

	sess, list, err := loadTasks(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		output.Header(out, "Tasks for "+sess.Email)
	}
	output.FormatTasks(out, list, env.Tasks.Location())
	return exitcode.Success
}
