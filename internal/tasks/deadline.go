package tasks

import (
	"fmt"
	"strings"
	"time"

	"tasknova/internal/service"
)

// DeadlineHint is the input format shown next to the deadline field.
const DeadlineHint = "YYYY-MM-DD HH:MM"

var deadlineLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDeadline converts a human-entered deadline, read as wall-clock time in
// loc, to epoch milliseconds.
func ParseDeadline(s string, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, service.Invalid("deadline", "deadline is required")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, service.Invalid("deadline", "deadline must look like %s", DeadlineHint)
}

// FormatDeadline renders epoch milliseconds as DD/MM/YYYY H:MM AM|PM in loc.
// Midnight and noon both show hour 12.
func FormatDeadline(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t := time.UnixMilli(ms).In(loc)

	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%02d/%02d/%d %d:%02d %s", t.Day(), int(t.Month()), t.Year(), hour, t.Minute(), ampm)
}
