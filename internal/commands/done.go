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
	Register(&DoneCmd{})
}

// DoneCmd toggles the completed flag of a task.
type DoneCmd struct{}

func (c *DoneCmd) Name() string            { return "done" }
func (c *DoneCmd) Aliases() []string       { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string        { return "Mark a task completed, or reopen it" }
func (c *DoneCmd) Usage() string           { return "tasknova done [common flags] <n|id>" }
func (c *DoneCmd) Route() navigation.Route { return navigation.Home }
func (c *DoneCmd) NeedsBackend() bool      { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	_, list, err := loadTasks(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	task, err := ResolveTask(list, args)
	if err != nil {
		output.Error(errOut, "%v", err)
		return exitcode.UserError
	}

	if err := env.Tasks.ToggleComplete(ctx, task.ID, task.Completed); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		if task.Completed {
			output.OK(out, "reopened")
		} else {
			output.OK(out, "ok")
		}
	}
	return exitcode.Success
}
