package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasknova/internal/exitcode"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string            { return "rm" }
func (c *RmCmd) Aliases() []string       { return []string{"delete"} }
func (c *RmCmd) Synopsis() string        { return "Delete a task" }
func (c *RmCmd) Usage() string           { return "tasknova rm [common flags] [--yes] <n|id>" }
func (c *RmCmd) Route() navigation.Route { return navigation.Home }
func (c *RmCmd) NeedsBackend() bool      { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	c.yes = false
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	_, list, err := loadTasks(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	task, err := ResolveTask(list, args)
	if err != nil {
		output.Error(errOut, "%v", err)
		return exitcode.UserError
	}

	err = env.Tasks.Delete(ctx, task.ID, prompt(env.In, errOut, c.yes))
	if errors.Is(err, service.ErrCancelled) {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}
	if err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		output.OK(out, "ok")
	}
	return exitcode.Success
}
