package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tasknova/internal/service"
	"tasknova/internal/tasks"
)

func newTaskForm() *form {
	choices := make([]string, len(service.Priorities))
	for i, p := range service.Priorities {
		choices[i] = string(p)
	}
	f := newForm(
		fieldSpec{key: "title", label: "Title", icon: IconTask, placeholder: "What needs doing?"},
		fieldSpec{key: "description", label: "Description", icon: IconTask},
		fieldSpec{key: "deadline", label: "Deadline", icon: IconCalendar, placeholder: tasks.DeadlineHint},
		fieldSpec{key: "priority", label: "Priority", icon: IconFlag, choices: choices},
	)
	return &f
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog != nil {
		return m.updateDialog(msg)
	}
	if m.adding != nil {
		if msg.String() == "esc" {
			m.adding = nil
			return m, nil
		}
		submit, cmd := m.adding.update(msg)
		if submit {
			return m, m.createTask()
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		m.adding = newTaskForm()
		m.setNotice("", false)
	case " ", "x":
		if t, ok := m.selected(); ok {
			return m, m.toggleTask(t)
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.dialog = &dialog{kind: dialogDelete, taskID: t.ID}
		}
	case "L":
		m.dialog = &dialog{kind: dialogLogout}
	}
	return m, nil
}

func (m *Model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.list) {
		return service.Task{}, false
	}
	return m.list[m.cursor], true
}

func (m *Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch msg.String() {
	case "y", "Y", "enter":
		answer = true
	case "n", "N", "esc":
		answer = false
	default:
		return m, nil
	}

	d := m.dialog
	m.dialog = nil
	switch d.kind {
	case dialogDelete:
		return m, m.deleteTask(d.taskID, answer)
	case dialogLogout:
		if !answer {
			return m, nil
		}
		return m, m.logout()
	}
	return m, nil
}

func (m *Model) createTask() tea.Cmd {
	f := tasks.Form{
		Title:       m.adding.value("title"),
		Description: m.adding.value("description"),
		Deadline:    m.adding.value("deadline"),
		Priority:    m.adding.value("priority"),
	}
	bridge, ctx, user := m.opts.Tasks, m.ctx, m.user
	return func() tea.Msg {
		_, err := bridge.Create(ctx, user, f)
		return taskResultMsg{op: "create", err: err, notice: "Task added"}
	}
}

func (m *Model) toggleTask(t service.Task) tea.Cmd {
	bridge, ctx := m.opts.Tasks, m.ctx
	return func() tea.Msg {
		err := bridge.ToggleComplete(ctx, t.ID, t.Completed)
		return taskResultMsg{op: "update", err: err}
	}
}

// deleteTask hands the dialog's answer to the bridge as its confirmation.
func (m *Model) deleteTask(id string, answer bool) tea.Cmd {
	bridge, ctx := m.opts.Tasks, m.ctx
	confirm := tasks.ConfirmFunc(func(title, message string) (bool, error) { return answer, nil })
	return func() tea.Msg {
		err := bridge.Delete(ctx, id, confirm)
		return taskResultMsg{op: "delete", err: err, notice: "Task deleted"}
	}
}

func (m *Model) logout() tea.Cmd {
	auth, ctx := m.opts.Auth, m.ctx
	return func() tea.Msg {
		if err := auth.SignOut(ctx); err != nil {
			return taskResultMsg{op: "logout", err: err}
		}
		return nil
	}
}

func taskFailure(op string, err error) string {
	switch op {
	case "create":
		return "Error adding task: " + err.Error()
	case "update":
		return "Error updating task: " + err.Error()
	case "delete":
		return "Error deleting task: " + err.Error()
	case "logout":
		return "Logout failed: " + err.Error()
	}
	return err.Error()
}

func loadFailure(err error) string {
	return "Error loading tasks: " + err.Error()
}

func (m *Model) viewHome() string {
	email := ""
	if m.user != nil {
		email = m.user.Email
	}
	header := Header(Glyph(IconCheckmark)+" "+AppName, email)

	if m.adding != nil {
		return ScreenWrapper(m.width,
			header,
			labelStyle.Render(Glyph(IconAdd)+" New Task")+"\n\n"+m.adding.view(),
			m.footer("tab next • ←/→ priority • enter save • esc cancel"),
		)
	}

	body := m.viewTaskList()
	if m.dialog != nil {
		switch m.dialog.kind {
		case dialogDelete:
			body += "\n\n" + Dialog(Glyph(IconDelete)+" "+tasks.DeleteTitle, tasks.DeleteMessage, "Cancel", "Delete")
		case dialogLogout:
			body += "\n\n" + Dialog(Glyph(IconLogout)+" Logout", "Are you sure you want to logout?", "Cancel", "Logout")
		}
	}
	return ScreenWrapper(m.width,
		header,
		body,
		m.footer("j/k move • space toggle • a add • d delete • L logout • q quit"),
	)
}

func (m *Model) viewTaskList() string {
	if len(m.list) == 0 {
		return subtitleStyle.Render("No tasks yet. Press a to add one.")
	}

	var b strings.Builder
	for i, t := range m.list {
		if i > 0 {
			b.WriteString("\n")
		}
		mark := Glyph(IconTask)
		title := t.Title
		if t.Completed {
			mark = Glyph(IconDone)
			title = completedStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s", mark, title)
		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")

		prio := string(t.Priority)
		if style, ok := priorityStyles[prio]; ok {
			prio = style.Render(prio)
		}
		meta := fmt.Sprintf("    %s %s  %s %s", Glyph(IconCalendar), m.opts.Tasks.Format(t.Deadline), Glyph(IconFlag), prio)
		b.WriteString(subtitleStyle.Render(meta))
		if d := strings.TrimSpace(t.Description); d != "" {
			b.WriteString("\n    ")
			b.WriteString(d)
		}
	}
	return b.String()
}
