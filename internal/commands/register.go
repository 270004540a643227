package commands

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"tasknova/internal/exitcode"
	"tasknova/internal/forms"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register screen.
type RegisterCmd struct {
	form forms.Register
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "tasknova register [common flags] --name <name> --email <email> --password <password>"
}
func (c *RegisterCmd) Route() navigation.Route { return navigation.Register }
func (c *RegisterCmd) NeedsBackend() bool      { return true }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form = forms.Register{}
	fs.StringVar(&c.form.Name, "name", "", "")
	fs.StringVar(&c.form.Email, "email", "", "")
	fs.StringVar(&c.form.Password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		output.Error(errOut, "unexpected argument: %s", args[0])
		return exitcode.UserError
	}
	if err := c.form.Validate(); err != nil {
		output.Error(errOut, "%s", err)
		return exitcode.UserError
	}

	sess, err := env.Backend.Auth().SignUp(ctx, c.form.Email, c.form.Password)
	if err != nil {
		if service.IsAuth(err) {
			output.Error(errOut, "Registration Failed: %s", err)
			return exitcode.AuthError
		}
		return report(errOut, err)
	}
	env.Logger.Info("registered", zap.String("user_id", sess.UserID))

	if !env.Config.Quiet {
		output.OK(out, "account created for %s", c.form.Name)
		output.OK(out, "logged in as %s", sess.Email)
	}
	return exitcode.Success
}
