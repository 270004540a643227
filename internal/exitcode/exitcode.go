// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid form input, unknown task).
	UserError = 1

	// AuthError indicates a rejected sign-in or a screen that is not reachable
	// for the current session.
	AuthError = 2

	// BackendError indicates a store, database or network error.
	BackendError = 3
)
