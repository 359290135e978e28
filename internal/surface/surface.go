package surface

import "errors"

// ErrNotEditable is returned when a write targets a surface that is not editable.
var ErrNotEditable = errors.New("surface: not editable")

// Snapshot is a point-in-time read of a surface. Caret is a rune offset.
type Snapshot struct {
	Text  string
	Caret int
}

// Runes returns the snapshot text as runes.
func (s Snapshot) Runes() []rune {
	return []rune(s.Text)
}

// Surface is the uniform read/write/caret contract over both surface kinds.
type Surface interface {
	Read() Snapshot
	Replace(newText string, caretAfter int) error
	SupportsSelection() bool
}

// Editable is the editing side used by the host form to apply keystrokes.
type Editable interface {
	Surface
	InsertText(text string)
	DeleteBackward()
	SetCaret(pos int)
	MoveCaret(delta int)
	MoveHome()
	MoveEnd()
	Focus()
	Blur()
	Focused() bool
}

// Kind is the type attribute of a flat control.
type Kind string

const (
	KindText     Kind = "text"
	KindSearch   Kind = "search"
	KindEmail    Kind = "email"
	KindURL      Kind = "url"
	KindTextarea Kind = "textarea"
	KindPassword Kind = "password"
	KindNumber   Kind = "number"
)

func (k Kind) textual() bool {
	switch k {
	case KindText, KindSearch, KindEmail, KindURL, KindTextarea:
		return true
	}
	return false
}

// Qualifies reports whether s is an editable target for transliteration.
func Qualifies(s Surface) bool {
	switch v := s.(type) {
	case *Field:
		return v != nil && v.Kind.textual()
	case *Region:
		return v != nil && v.Editable
	}
	return false
}

func clampRange(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
