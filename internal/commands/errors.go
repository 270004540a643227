package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"tasknova/internal/exitcode"
	"tasknova/internal/output"
	"tasknova/internal/service"
	"tasknova/internal/tasks"
)

// NotLoggedIn is printed when a command needs a signed-in user.
const NotLoggedIn = "not logged in (run: tasknova login)"

// report prints err and maps it to an exit code.
func report(errOut io.Writer, err error) int {
	switch {
	case service.IsValidation(err):
		output.Error(errOut, "%s", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrNoSession):
		output.Error(errOut, NotLoggedIn)
		return exitcode.AuthError
	case service.IsAuth(err):
		output.Error(errOut, "%s", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound):
		output.Error(errOut, "task not found")
		return exitcode.UserError
	default:
		output.Error(errOut, "backend error: %v", err)
		return exitcode.BackendError
	}
}

// prompt returns a Confirmer that asks on errOut and reads the answer from
// in. assumeYes skips the question.
func prompt(in io.Reader, errOut io.Writer, assumeYes bool) tasks.Confirmer {
	return tasks.ConfirmFunc(func(title, message string) (bool, error) {
		if assumeYes {
			return true, nil
		}
		if in == nil {
			return false, nil
		}
		fmt.Fprintf(errOut, "%s\n%s [y/N] ", title, message)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
