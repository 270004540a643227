// Package service defines the backend-agnostic contracts for sessions and tasks.
package service

import (
	"fmt"
	"strings"
)

// Session is the authenticated identity of the current user.
// A nil *Session means nobody is signed in.
type Session struct {
	UserID string
	Email  string
}

// Priority is a task priority as picked from the fixed High/Medium/Low set.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the selectable priorities in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority: %q", s)
}

// Task is one document of the task collection.
type Task struct {
	ID          string
	Title       string
	Description string
	Deadline    int64 // epoch milliseconds
	Completed   bool
	Priority    Priority
	OwnerID     string
}

// NewTask holds the fields submitted for an insert. The store assigns the ID.
type NewTask struct {
	Title       string
	Description string
	Deadline    int64
	Priority    Priority
	OwnerID     string
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Completed *bool
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }
