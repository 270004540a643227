package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"tasknova/internal/exitcode"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/service"
	"tasknova/internal/session"
	"tasknova/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add-task form of the home screen.
type AddCmd struct {
	form tasks.Form
}

// SetForm sets the form fields (for testing).
func (c *AddCmd) SetForm(f tasks.Form) {
	c.form = f
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasknova add [common flags] --deadline <" + tasks.DeadlineHint + "> --priority <High|Medium|Low> [--description <text>] [--title <title>] [title...]"
}
func (c *AddCmd) Route() navigation.Route { return navigation.Home }
func (c *AddCmd) NeedsBackend() bool      { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form = tasks.Form{}
	fs.StringVar(&c.form.Title, "title", "", "")
	fs.StringVar(&c.form.Title, "t", "", "")
	fs.StringVar(&c.form.Description, "description", "", "")
	fs.StringVar(&c.form.Description, "d", "", "")
	fs.StringVar(&c.form.Deadline, "deadline", "", "")
	fs.StringVar(&c.form.Priority, "priority", "", "")
	fs.StringVar(&c.form.Priority, "p", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	form := c.form
	if len(args) > 0 {
		if form.Title != "" {
			output.Error(errOut, "title given twice")
			return exitcode.UserError
		}
		form.Title = strings.Join(args, " ")
	}

	var sess *service.Session
	if s, err := session.Current(ctx); err == nil {
		sess = &s
	}

	id, err := env.Tasks.Create(ctx, sess, form)
	if err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		output.OK(out, "ok %s", id)
	}
	return exitcode.Success
}
