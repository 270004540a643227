// Package tui is the interactive terminal client. One screen is shown per
// navigation route and the navigation switch follows the session holder, so
// signing in or out swaps the whole screen set.
package tui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tasknova/internal/logging"
	"tasknova/internal/navigation"
	"tasknova/internal/service"
	"tasknova/internal/session"
	"tasknova/internal/tasks"
)

// Options holds the dependencies of the interactive client.
type Options struct {
	Auth    service.AuthProvider
	Session *session.Holder
	Tasks   *tasks.Bridge
	Logger  *zap.Logger

	// In and Out default to the terminal when nil.
	In  io.Reader
	Out io.Writer
}

type sessionMsg struct {
	sess   *service.Session
	closed bool
}

type tasksMsg []service.Task

// subscribeErrMsg reports a task query that could not be opened.
type subscribeErrMsg struct{ err error }

// authResultMsg reports the outcome of a request made from an account screen.
type authResultMsg struct {
	route  navigation.Route
	err    error
	notice string
}

// taskResultMsg reports the outcome of a create, toggle or delete.
type taskResultMsg struct {
	op     string
	err    error
	notice string
}

type dialogKind int

const (
	dialogDelete dialogKind = iota
	dialogLogout
)

type dialog struct {
	kind   dialogKind
	taskID string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *zap.Logger
	nav    *navigation.Switch

	sessions     <-chan *service.Session
	stopSessions func()
	user         *service.Session

	spinner spinner.Model
	width   int

	welcomeFocus int
	forms        map[navigation.Route]*form
	busy         bool

	list   []service.Task
	cursor int
	adding *form
	dialog *dialog

	notice    string
	noticeErr bool
}

func newModel(ctx context.Context, opts Options) *Model {
	sessions, stop := opts.Session.Changes()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	m := &Model{
		ctx:          ctx,
		opts:         opts,
		logger:       logging.OrNop(opts.Logger).Named("tui"),
		nav:          navigation.NewSwitch(),
		sessions:     sessions,
		stopSessions: stop,
		spinner:      s,
	}
	m.resetScreens()
	return m
}

// Close releases the session stream.
func (m *Model) Close() {
	m.stopSessions()
}

func (m *Model) resetScreens() {
	m.welcomeFocus = 0
	m.forms = map[navigation.Route]*form{
		navigation.Register:       newRegisterForm(),
		navigation.Login:          newLoginForm(),
		navigation.ForgetPassword: newResetForm(),
	}
	m.busy = false
	m.cursor = 0
	m.adding = nil
	m.dialog = nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		waitSession(m.sessions),
		waitTasks(m.opts.Tasks.Updates()),
		waitSubscribeErr(m.opts.Tasks.Errors()),
	)
}

func waitSession(ch <-chan *service.Session) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		return sessionMsg{sess: s, closed: !ok}
	}
}

func waitTasks(ch <-chan []service.Task) tea.Cmd {
	return func() tea.Msg {
		return tasksMsg(<-ch)
	}
}

func waitSubscribeErr(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return subscribeErrMsg{err: <-ch}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.nav.State() != navigation.NotReady {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMsg:
		if msg.closed {
			return m, tea.Quit
		}
		m.user = msg.sess
		if m.nav.Apply(msg.sess) {
			m.logger.Debug("navigation state changed", zap.Stringer("state", m.nav.State()))
			m.resetScreens()
		}
		return m, waitSession(m.sessions)

	case tasksMsg:
		m.list = msg
		if m.cursor >= len(m.list) {
			m.cursor = max(len(m.list)-1, 0)
		}
		return m, waitTasks(m.opts.Tasks.Updates())

	case subscribeErrMsg:
		m.logger.Debug("task query failed", zap.Error(msg.err))
		m.setNotice(loadFailure(msg.err), true)
		return m, waitSubscribeErr(m.opts.Tasks.Errors())

	case authResultMsg:
		m.handleAuthResult(msg)
		return m, nil

	case taskResultMsg:
		m.handleTaskResult(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeErr = isError
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.nav.Current() {
	case "":
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case navigation.Welcome:
		return m.updateWelcome(msg)
	case navigation.Register, navigation.Login, navigation.ForgetPassword:
		return m.updateAccount(msg)
	case navigation.Home:
		return m.updateHome(msg)
	}
	return m, nil
}

func (m *Model) navigate(r navigation.Route) {
	if err := m.nav.Navigate(r); err != nil {
		m.logger.Debug("navigation refused", zap.Error(err))
		return
	}
	m.setNotice("", false)
}

func (m *Model) handleAuthResult(msg authResultMsg) {
	m.busy = false
	if msg.err != nil {
		m.setNotice(authFailure(msg.route, msg.err), true)
		return
	}
	m.setNotice(msg.notice, false)
	if msg.route == navigation.Register {
		// A provider that does not sign in on registration leaves the
		// switch unauthenticated; send the user to the login screen.
		if m.nav.State() == navigation.Unauthenticated {
			m.navigate(navigation.Login)
			m.setNotice(msg.notice, false)
		}
	}
}

func (m *Model) handleTaskResult(msg taskResultMsg) {
	switch {
	case msg.err == nil:
		if msg.op == "create" {
			m.adding = nil
		}
		m.setNotice(msg.notice, false)
	case errors.Is(msg.err, service.ErrCancelled):
		m.setNotice("", false)
	case service.IsValidation(msg.err) && m.adding != nil:
		var ve *service.ValidationError
		errors.As(msg.err, &ve)
		m.adding.setError(ve.Field, ve.Message)
		m.setNotice("", false)
	case errors.Is(msg.err, service.ErrNoSession):
		m.setNotice("You are not logged in.", true)
	default:
		m.setNotice(taskFailure(msg.op, msg.err), true)
	}
}

func (m *Model) View() string {
	if m.nav.State() == navigation.NotReady {
		return Loading(m.spinner, "Loading...")
	}

	switch m.nav.Current() {
	case navigation.Welcome:
		return m.viewWelcome()
	case navigation.Register, navigation.Login, navigation.ForgetPassword:
		return m.viewAccount()
	case navigation.Home:
		return m.viewHome()
	}
	return ""
}

func (m *Model) footer(hints string) string {
	n := Notice(m.notice, m.noticeErr)
	h := hintStyle.Render(hints)
	if n == "" {
		return h
	}
	return n + "\n" + h
}
