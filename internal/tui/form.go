package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// fieldSpec describes one form field.
type fieldSpec struct {
	key         string
	label       string
	icon        Icon
	placeholder string
	secret      bool
	choices     []string // a fixed choice cycled with left/right instead of typed text
}

type field struct {
	def    fieldSpec
	input  textinput.Model
	choice int
	err    string
}

// form is a column of inputs with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func newForm(specs ...fieldSpec) form {
	f := form{fields: make([]field, len(specs))}
	for i, def := range specs {
		in := textinput.New()
		in.Placeholder = def.placeholder
		in.CharLimit = 200
		in.Width = 40
		if def.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields[i] = field{def: def, input: in}
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if j == f.focus {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

// update handles a key. submit is true when enter is pressed on the last
// field.
func (f *form) update(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil
	case "enter":
		if f.focus == len(f.fields)-1 {
			return true, nil
		}
		f.setFocus(f.focus + 1)
		return false, nil
	}

	cur := &f.fields[f.focus]
	if len(cur.def.choices) > 0 {
		switch msg.String() {
		case "left", "h":
			cur.choice = (cur.choice + len(cur.def.choices) - 1) % len(cur.def.choices)
		case "right", "l", " ":
			cur.choice = (cur.choice + 1) % len(cur.def.choices)
		}
		return false, nil
	}

	var c tea.Cmd
	cur.input, c = cur.input.Update(msg)
	return false, c
}

// value returns the text or selected choice of the field with key.
func (f *form) value(key string) string {
	for _, fl := range f.fields {
		if fl.def.key == key {
			if len(fl.def.choices) > 0 {
				return fl.def.choices[fl.choice]
			}
			return fl.input.Value()
		}
	}
	return ""
}

// setError attaches err to the field with key and clears the others.
// An unknown key only clears.
func (f *form) setError(key, err string) {
	for i := range f.fields {
		f.fields[i].err = ""
		if f.fields[i].def.key == key {
			f.fields[i].err = err
			f.setFocus(i)
		}
	}
}

func (f *form) view() string {
	rows := make([]string, len(f.fields))
	for i, fl := range f.fields {
		var widget string
		if len(fl.def.choices) > 0 {
			opts := make([]string, len(fl.def.choices))
			for j, c := range fl.def.choices {
				if j == fl.choice {
					opts[j] = selectedStyle.Render(" " + c + " ")
				} else {
					opts[j] = " " + c + " "
				}
			}
			widget = strings.Join(opts, " ")
			if i == f.focus {
				widget = "> " + widget
			} else {
				widget = "  " + widget
			}
		} else {
			widget = fl.input.View()
		}
		rows[i] = Input(fl.def.icon, fl.def.label, widget, fl.err)
	}
	return strings.Join(rows, "\n\n")
}
