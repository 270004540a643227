// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"tasknova/internal/service"
	"tasknova/internal/tasks"
)

var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.FgCyan, color.Bold)
	doneColor    = color.New(color.Faint)
	priorityHigh = color.New(color.FgRed)
	priorityMed  = color.New(color.FgYellow)
	priorityLow  = color.New(color.FgGreen)
)

// Error writes an "error: ..." line.
func Error(w io.Writer, format string, args ...any) {
	errorColor.Fprintf(w, "error: "+format+"\n", args...)
}

// OK writes a success line.
func OK(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

// Header writes a screen title.
func Header(w io.Writer, title string) {
	headerColor.Fprintln(w, title)
}

// FormatTask formats one task of the home list.
//
//	1  [x] Title
//	     description line
//	     Deadline: 05/03/2024 2:30 PM
//	     Priority: High
func FormatTask(w io.Writer, num int, task service.Task, loc *time.Location) {
	mark := " "
	title := normalizeTitle(task.Title)
	if task.Completed {
		mark = "x"
		title = doneColor.Sprint(title)
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", num, mark, title)

	for _, line := range strings.Split(strings.TrimSpace(task.Description), "\n") {
		if line = strings.TrimRight(line, "\r "); line != "" {
			fmt.Fprintf(w, "        %s\n", line)
		}
	}
	fmt.Fprintf(w, "        Deadline: %s\n", tasks.FormatDeadline(task.Deadline, loc))
	fmt.Fprintf(w, "        Priority: %s\n", priorityColor(task.Priority).Sprint(task.Priority))
}

// FormatTasks formats the whole list, or a placeholder when it is empty.
func FormatTasks(w io.Writer, list []service.Task, loc *time.Location) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with: tasknova add")
		return
	}
	for i, task := range list {
		FormatTask(w, i+1, task, loc)
	}
}

func priorityColor(p service.Priority) *color.Color {
	switch p {
	case service.PriorityHigh:
		return priorityHigh
	case service.PriorityMedium:
		return priorityMed
	default:
		return priorityLow
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
