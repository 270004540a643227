package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"tasknova/internal/forms"
	"tasknova/internal/navigation"
	"tasknova/internal/service"
)

const (
	resetSentMessage   = "Password reset email sent. Please check your inbox."
	resetFailedMessage = "Failed to send password reset email. Please try again."
)

func newRegisterForm() *form {
	f := newForm(
		fieldSpec{key: "name", label: "Name", icon: IconUser, placeholder: "Your name"},
		fieldSpec{key: "email", label: "Email", icon: IconEmail, placeholder: "you@example.com"},
		fieldSpec{key: "password", label: "Password", icon: IconLock, secret: true},
	)
	return &f
}

func newLoginForm() *form {
	f := newForm(
		fieldSpec{key: "email", label: "Email", icon: IconEmail, placeholder: "you@example.com"},
		fieldSpec{key: "password", label: "Password", icon: IconLock, secret: true},
	)
	return &f
}

func newResetForm() *form {
	f := newForm(
		fieldSpec{key: "email", label: "Email", icon: IconEmail, placeholder: "you@example.com"},
	)
	return &f
}

func (m *Model) updateAccount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	route := m.nav.Current()
	fm := m.forms[route]

	switch msg.String() {
	case "esc":
		if m.nav.Back() {
			m.setNotice("", false)
		}
		return m, nil
	case "ctrl+f":
		if route == navigation.Login {
			m.navigate(navigation.ForgetPassword)
		}
		return m, nil
	case "ctrl+r":
		if route == navigation.Login {
			m.navigate(navigation.Register)
		}
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	submit, cmd := fm.update(msg)
	if !submit {
		return m, cmd
	}
	return m, m.submitAccount(route, fm)
}

// submitAccount validates the form of route and returns the request to run,
// or nil when validation failed.
func (m *Model) submitAccount(route navigation.Route, fm *form) tea.Cmd {
	var err error
	switch route {
	case navigation.Register:
		err = forms.Register{Name: fm.value("name"), Email: fm.value("email"), Password: fm.value("password")}.Validate()
	case navigation.Login:
		err = forms.Login{Email: fm.value("email"), Password: fm.value("password")}.Validate()
	case navigation.ForgetPassword:
		err = forms.PasswordReset{Email: fm.value("email")}.Validate()
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		fm.setError(ve.Field, ve.Message)
		return nil
	}
	fm.setError("", "")

	m.busy = true
	m.setNotice("", false)
	auth := m.opts.Auth
	ctx := m.ctx
	email, password, name := fm.value("email"), fm.value("password"), fm.value("name")

	return func() tea.Msg {
		switch route {
		case navigation.Register:
			if _, err := auth.SignUp(ctx, email, password); err != nil {
				return authResultMsg{route: route, err: err}
			}
			return authResultMsg{route: route, notice: "Account created for " + name}
		case navigation.Login:
			_, err := auth.SignIn(ctx, email, password)
			return authResultMsg{route: route, err: err}
		default:
			if err := auth.SendPasswordReset(ctx, email); err != nil {
				return authResultMsg{route: route, err: err}
			}
			return authResultMsg{route: route, notice: resetSentMessage}
		}
	}
}

// authFailure renders a provider rejection. Auth messages are shown as the
// provider worded them.
func authFailure(route navigation.Route, err error) string {
	switch route {
	case navigation.Register:
		return "Registration Failed: " + err.Error()
	case navigation.Login:
		return "Login Failed: " + err.Error()
	case navigation.ForgetPassword:
		if service.IsAuth(err) {
			return resetFailedMessage + " " + err.Error()
		}
		return resetFailedMessage
	}
	return err.Error()
}

var accountTitles = map[navigation.Route][2]string{
	navigation.Register:       {"Create Account", "Sign up to start managing your tasks"},
	navigation.Login:          {"Welcome Back", "Log in to your account"},
	navigation.ForgetPassword: {"Forgot Password", "We will send you a reset link"},
}

func (m *Model) viewAccount() string {
	route := m.nav.Current()
	titles := accountTitles[route]

	body := m.forms[route].view()
	if m.busy {
		body += "\n\n" + subtitleStyle.Render("Please wait...")
	}

	hints := "tab next • enter submit • esc back"
	if route == navigation.Login {
		hints += " • ctrl+f forgot password • ctrl+r register"
	}
	return ScreenWrapper(m.width,
		Header(titles[0], titles[1])+"\n"+BackButton(),
		body,
		m.footer(hints),
	)
}
