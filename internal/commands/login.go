package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasknova/internal/backend/googletasks"
	"tasknova/internal/exitcode"
	"tasknova/internal/forms"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login screen. Providers without passwords run
// their browser consent flow instead.
type LoginCmd struct {
	form forms.Login
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in" }
func (c *LoginCmd) Usage() string {
	return "tasknova login [common flags] --email <email> --password <password>"
}
func (c *LoginCmd) Route() navigation.Route { return navigation.Login }
func (c *LoginCmd) NeedsBackend() bool      { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form = forms.Login{}
	fs.StringVar(&c.form.Email, "email", "", "")
	fs.StringVar(&c.form.Password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		output.Error(errOut, "unexpected argument: %s", args[0])
		return exitcode.UserError
	}

	var sess service.Session
	var err error
	if authz, ok := env.Backend.Auth().(service.Authorizer); ok && c.form.Email == "" {
		sess, err = authz.Authorize(ctx, errOut)
		if errors.Is(err, googletasks.ErrNoOAuthClient) {
			output.Error(errOut, "oauth_client.json not found in %s", env.Config.Dir)
			fmt.Fprintln(errOut, "")
			googletasks.PrintSetupHelp(errOut, env.Config.Dir)
			return exitcode.AuthError
		}
	} else {
		if err := c.form.Validate(); err != nil {
			output.Error(errOut, "%s", err)
			return exitcode.UserError
		}
		sess, err = env.Backend.Auth().SignIn(ctx, c.form.Email, c.form.Password)
	}
	if err != nil {
		if service.IsAuth(err) {
			output.Error(errOut, "Login Failed: %s", err)
			return exitcode.AuthError
		}
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		output.OK(out, "logged in as %s", sess.Email)
	}
	return exitcode.Success
}
