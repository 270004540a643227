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
	Register(&WatchCmd{})
}

// WatchCmd prints the task list again every time it changes.
type WatchCmd struct{}

func (c *WatchCmd) Name() string            { return "watch" }
func (c *WatchCmd) Aliases() []string       { return nil }
func (c *WatchCmd) Synopsis() string        { return "Follow your tasks live" }
func (c *WatchCmd) Usage() string           { return "tasknova watch [common flags]" }
func (c *WatchCmd) Route() navigation.Route { return navigation.Home }
func (c *WatchCmd) NeedsBackend() bool      { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

// separator is printed between snapshots.
const separator = "------------"

func (c *WatchCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if _, _, err := loadTasks(ctx, env); err != nil {
		return report(errOut, err)
	}

	for {
		select {
		case <-ctx.Done():
			return exitcode.Success
		case list := <-env.Tasks.Updates():
			fmt.Fprintln(out, separator)
			output.FormatTasks(out, list, env.Tasks.Location())
		}
	}
}
