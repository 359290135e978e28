package surface

// Field is a flat-value control: a single string plus a caret offset.
type Field struct {
	Kind           Kind
	Name           string
	value          []rune
	SelectionStart int
	// ScrollX is the first visible rune; kept stable across Replace.
	ScrollX int
	focused bool
}

func NewField(name string, kind Kind, value string) *Field {
	f := &Field{Name: name, Kind: kind, value: []rune(value)}
	f.SelectionStart = len(f.value)
	return f
}

func (f *Field) Value() string {
	return string(f.value)
}

func (f *Field) Read() Snapshot {
	return Snapshot{Text: string(f.value), Caret: clampRange(f.SelectionStart, 0, len(f.value))}
}

func (f *Field) SupportsSelection() bool {
	return true
}

func (f *Field) Replace(newText string, caretAfter int) error {
	scroll := f.ScrollX
	f.value = []rune(newText)
	f.SelectionStart = clampRange(caretAfter, 0, len(f.value))
	f.ScrollX = clampRange(scroll, 0, len(f.value))
	return nil
}

func (f *Field) InsertText(text string) {
	rs := []rune(text)
	if len(rs) == 0 {
		return
	}
	pos := clampRange(f.SelectionStart, 0, len(f.value))
	out := make([]rune, 0, len(f.value)+len(rs))
	out = append(out, f.value[:pos]...)
	out = append(out, rs...)
	out = append(out, f.value[pos:]...)
	f.value = out
	f.SelectionStart = pos + len(rs)
}

func (f *Field) DeleteBackward() {
	pos := clampRange(f.SelectionStart, 0, len(f.value))
	if pos == 0 {
		return
	}
	f.value = append(f.value[:pos-1], f.value[pos:]...)
	f.SelectionStart = pos - 1
}

func (f *Field) SetCaret(pos int) {
	f.SelectionStart = clampRange(pos, 0, len(f.value))
}

func (f *Field) MoveCaret(delta int) {
	f.SelectionStart = clampRange(f.SelectionStart+delta, 0, len(f.value))
}

func (f *Field) MoveHome() { f.SelectionStart = 0 }

func (f *Field) MoveEnd() { f.SelectionStart = len(f.value) }

func (f *Field) Focus() { f.focused = true }

func (f *Field) Blur() { f.focused = false }

func (f *Field) Focused() bool { return f.focused }

// EnsureCaretVisible adjusts ScrollX so the caret fits in width cells.
func (f *Field) EnsureCaretVisible(width int) {
	if width <= 0 {
		return
	}
	if f.SelectionStart < f.ScrollX {
		f.ScrollX = f.SelectionStart
	}
	if f.SelectionStart >= f.ScrollX+width {
		f.ScrollX = f.SelectionStart - width + 1
	}
	if f.ScrollX < 0 {
		f.ScrollX = 0
	}
}
