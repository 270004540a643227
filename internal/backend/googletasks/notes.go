package googletasks

import (
	"encoding/json"
	"strings"

	"tasknova/internal/service"
)

// metaPrefix starts the line appended to a task's notes that carries the
// fields Google Tasks has no column for.
const metaPrefix = "tasknova:"

type taskMeta struct {
	Owner    string `json:"owner"`
	Priority string `json:"priority"`
	Deadline int64  `json:"deadline"`
	Created  int64  `json:"created"`
}

// encodeNotes appends the metadata line to description.
func encodeNotes(description string, meta taskMeta) string {
	data, _ := json.Marshal(meta)
	line := metaPrefix + string(data)
	if description == "" {
		return line
	}
	return description + "\n\n" + line
}

// decodeNotes splits notes into the description and metadata. ok is false for
// tasks that were not written by this client.
func decodeNotes(notes string) (description string, meta taskMeta, ok bool) {
	idx := strings.LastIndex(notes, metaPrefix)
	if idx < 0 || (idx > 0 && notes[idx-1] != '\n') {
		return notes, taskMeta{}, false
	}
	if err := json.Unmarshal([]byte(notes[idx+len(metaPrefix):]), &meta); err != nil {
		return notes, taskMeta{}, false
	}
	if meta.Owner == "" {
		return notes, taskMeta{}, false
	}
	if _, err := service.ParsePriority(meta.Priority); err != nil {
		return notes, taskMeta{}, false
	}
	return strings.TrimRight(notes[:idx], "\n"), meta, true
}
