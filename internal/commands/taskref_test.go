package commands

import (
	"errors"
	"testing"

	"tasknova/internal/service"
)

var refList = []service.Task{
	{ID: "a1b2", Title: "first"},
	{ID: "c3d4", Title: "second"},
	{ID: "42", Title: "numeric id"},
}

func TestResolveTask_Position(t *testing.T) {
	task, err := ResolveTask(refList, []string{"2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "c3d4" {
		t.Errorf("expected c3d4, got %s", task.ID)
	}
}

func TestResolveTask_ID(t *testing.T) {
	task, err := ResolveTask(refList, []string{"a1b2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != "first" {
		t.Errorf("expected first, got %s", task.Title)
	}
}

// All-digit references are always positions, even when an ID matches.
func TestResolveTask_DigitsArePositions(t *testing.T) {
	_, err := ResolveTask(refList, []string{"42"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "task number out of range: 42" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveTask_Errors(t *testing.T) {
	tests := []struct {
		name string
		list []service.Task
		args []string
		want string
	}{
		{"zero", refList, []string{"0"}, "task number out of range: 0"},
		{"past end", refList, []string{"4"}, "task number out of range: 4"},
		{"empty list", nil, []string{"1"}, "task number out of range: 1"},
		{"overflow", refList, []string{"99999999999999999999"}, "task number out of range: 99999999999999999999"},
		{"unknown id", refList, []string{"zzz"}, "task not found: zzz"},
		{"too many", refList, []string{"1", "2"}, "too many arguments: [2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveTask(tt.list, tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestResolveTask_NoArgs(t *testing.T) {
	_, err := ResolveTask(refList, nil)
	if !errors.Is(err, ErrTaskRefRequired) {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"0", true},
		{"123", true},
		{"12a", false},
		{"-1", false},
		{"١٢", false}, // Arabic-Indic digits
	}
	for _, tt := range tests {
		if got := isAllDigits(tt.in); got != tt.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
