package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"tasknova/internal/service"
	"tasknova/internal/session"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ResolveTask finds the task args refers to in list.
//
// Parsing rules:
// 1. No args → error: task reference required
// 2. All digits → 1-based position in list, as printed by home
// 3. Anything else → task ID
func ResolveTask(list []service.Task, args []string) (service.Task, error) {
	if len(args) == 0 {
		return service.Task{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return service.Task{}, fmt.Errorf("too many arguments: %v", args[1:])
	}

	ref := args[0]
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 || num > len(list) {
			return service.Task{}, fmt.Errorf("task number out of range: %s", ref)
		}
		return list[num-1], nil
	}

	for _, t := range list {
		if t.ID == ref {
			return t, nil
		}
	}
	return service.Task{}, fmt.Errorf("task not found: %s", ref)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// loadTasks opens the live query for the signed-in user and waits for the
// first snapshot.
func loadTasks(ctx context.Context, env *Env) (service.Session, []service.Task, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return service.Session{}, nil, err
	}
	if err := env.Tasks.Subscribe(ctx, sess.UserID); err != nil {
		return sess, nil, err
	}
	list, err := env.Tasks.Snapshot(ctx)
	return sess, list, err
}
