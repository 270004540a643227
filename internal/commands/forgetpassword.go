package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"tasknova/internal/exitcode"
	"tasknova/internal/forms"
	"tasknova/internal/navigation"
	"tasknova/internal/output"
	"tasknova/internal/service"
)

const (
	resetSentMessage   = "Password reset email sent. Please check your inbox."
	resetFailedMessage = "Failed to send password reset email. Please try again."
)

func init() {
	Register(&ForgetPasswordCmd{})
}

// ForgetPasswordCmd implements the password reset screen. With --token it
// completes a reset on providers that support it.
type ForgetPasswordCmd struct {
	form     forms.PasswordReset
	token    string
	password string
}

func (c *ForgetPasswordCmd) Name() string      { return "forgetpassword" }
func (c *ForgetPasswordCmd) Aliases() []string { return []string{"reset"} }
func (c *ForgetPasswordCmd) Synopsis() string  { return "Reset a forgotten password" }
func (c *ForgetPasswordCmd) Usage() string {
	return "tasknova forgetpassword [common flags] --email <email> | --token <token> --password <new-password>"
}
func (c *ForgetPasswordCmd) Route() navigation.Route { return navigation.ForgetPassword }
func (c *ForgetPasswordCmd) NeedsBackend() bool      { return true }

func (c *ForgetPasswordCmd) RegisterFlags(fs *flag.FlagSet) {
	c.form = forms.PasswordReset{}
	c.token = ""
	c.password = ""
	fs.StringVar(&c.form.Email, "email", "", "")
	fs.StringVar(&c.token, "token", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *ForgetPasswordCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		output.Error(errOut, "unexpected argument: %s", args[0])
		return exitcode.UserError
	}
	if c.token != "" {
		return c.confirm(ctx, env, out, errOut)
	}

	if err := c.form.Validate(); err != nil {
		output.Error(errOut, "%s", err)
		return exitcode.UserError
	}

	if err := env.Backend.Auth().SendPasswordReset(ctx, c.form.Email); err != nil {
		env.Logger.Warn("password reset failed", zap.Error(err))
		output.Error(errOut, "%s", resetFailedMessage)
		if service.IsAuth(err) {
			fmt.Fprintf(errOut, "%s\n", err)
			return exitcode.AuthError
		}
		return exitcode.BackendError
	}

	if !env.Config.Quiet {
		output.OK(out, "%s", resetSentMessage)
	}
	return exitcode.Success
}

func (c *ForgetPasswordCmd) confirm(ctx context.Context, env *Env, out, errOut io.Writer) int {
	confirmer, ok := env.Backend.Auth().(service.ResetConfirmer)
	if !ok {
		output.Error(errOut, "this backend does not accept reset tokens")
		return exitcode.UserError
	}
	if c.password == "" {
		output.Error(errOut, "Please enter a new password")
		return exitcode.UserError
	}
	if err := confirmer.ConfirmPasswordReset(ctx, c.token, c.password); err != nil {
		return report(errOut, err)
	}
	if !env.Config.Quiet {
		output.OK(out, "password updated, you can now log in")
	}
	return exitcode.Success
}
