package surface

import "testing"

func TestFieldReplaceRestoresCaretAndScroll(t *testing.T) {
	f := NewField("title", KindText, "hello ki")
	f.ScrollX = 3
	if err := f.Replace("hello ಕಿ ", 9); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	snap := f.Read()
	if snap.Text != "hello ಕಿ " {
		t.Fatalf("text = %q, want %q", snap.Text, "hello ಕಿ ")
	}
	if snap.Caret != 9 {
		t.Fatalf("caret = %d, want 9", snap.Caret)
	}
	if f.ScrollX != 3 {
		t.Fatalf("scroll = %d, want 3", f.ScrollX)
	}
}

func TestFieldEditing(t *testing.T) {
	f := NewField("title", KindText, "")
	f.Focus()
	f.InsertText("kin")
	f.MoveCaret(-1)
	f.DeleteBackward()
	if got := f.Value(); got != "kn" {
		t.Fatalf("value = %q, want %q", got, "kn")
	}
	if f.SelectionStart != 1 {
		t.Fatalf("caret = %d, want 1", f.SelectionStart)
	}
	f.MoveEnd()
	if f.SelectionStart != 2 {
		t.Fatalf("caret = %d, want 2", f.SelectionStart)
	}
	f.MoveHome()
	f.DeleteBackward()
	if got := f.Value(); got != "kn" {
		t.Fatalf("value after backspace at 0 = %q, want %q", got, "kn")
	}
}

func TestFieldEnsureCaretVisible(t *testing.T) {
	f := NewField("title", KindText, "abcdefghij")
	f.EnsureCaretVisible(4)
	if f.ScrollX != 7 {
		t.Fatalf("scroll = %d, want 7", f.ScrollX)
	}
	f.MoveHome()
	f.EnsureCaretVisible(4)
	if f.ScrollX != 0 {
		t.Fatalf("scroll = %d, want 0", f.ScrollX)
	}
}

func TestRegionCaretFromNestedAnchor(t *testing.T) {
	bold := Text("ki")
	r := NewRegion("body",
		Element("p", Text("namma ")),
		Element("p", Element("b", bold)),
	)
	r.SetSelection(bold, 1)
	snap := r.Read()
	if snap.Text != "namma ki" {
		t.Fatalf("text = %q, want %q", snap.Text, "namma ki")
	}
	if snap.Caret != 7 {
		t.Fatalf("caret = %d, want 7", snap.Caret)
	}

	// Element anchors count whole children.
	r.SetSelection(r.Root, 1)
	if got := r.Read().Caret; got != 6 {
		t.Fatalf("element caret = %d, want 6", got)
	}
}

func TestRegionReadWithoutSelection(t *testing.T) {
	r := NewRegion("body", Element("p", Text("abc")))
	if r.SupportsSelection() {
		t.Fatalf("SupportsSelection = true, want false")
	}
	if got := r.Read().Caret; got != 3 {
		t.Fatalf("caret = %d, want 3", got)
	}
}

func TestRegionDetachedAnchorFallsBackToEnd(t *testing.T) {
	r := NewRegion("body", Element("p", Text("abc")))
	r.SetSelection(Text("zz"), 1)
	if got := r.Read().Caret; got != 3 {
		t.Fatalf("caret = %d, want 3", got)
	}
}

func TestRegionReplaceFlattens(t *testing.T) {
	first := Text("namma ")
	r := NewRegion("body",
		Element("p", first),
		Element("p", Element("i", Text("ki"))),
	)
	if err := r.Replace("namma ಕಿ ", 9); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if len(r.Root.Children) != 1 || r.Root.Children[0].Type != TextNode {
		t.Fatalf("root children = %d, want single text node", len(r.Root.Children))
	}
	snap := r.Read()
	if snap.Text != "namma ಕಿ " || snap.Caret != 9 {
		t.Fatalf("snapshot = %+v, want text %q caret 9", snap, "namma ಕಿ ")
	}
	if !r.Focused() {
		t.Fatalf("focus not restored")
	}
}

func TestRegionReplaceSynthesizesTextNode(t *testing.T) {
	r := NewRegion("body", Element("br"))
	if err := r.Replace("ಕಿ ", 3); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	snap := r.Read()
	if snap.Text != "ಕಿ " || snap.Caret != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRegionReplaceNotEditable(t *testing.T) {
	r := NewRegion("body")
	r.Editable = false
	if err := r.Replace("x", 1); err != ErrNotEditable {
		t.Fatalf("Replace error = %v, want ErrNotEditable", err)
	}
}

func TestRegionEditing(t *testing.T) {
	r := NewRegion("body", Element("p", Text("ab\n")), Element("p", Text("cd")))
	r.Focus()
	r.InsertText("k")
	if got := r.Read(); got.Text != "ab\ncdk" || got.Caret != 6 {
		t.Fatalf("after insert = %+v", got)
	}
	r.MoveHome()
	if got := r.Read().Caret; got != 3 {
		t.Fatalf("home caret = %d, want 3", got)
	}
	r.DeleteBackward()
	if got := r.Read(); got.Text != "abcdk" || got.Caret != 2 {
		t.Fatalf("after backspace = %+v", got)
	}
	r.MoveEnd()
	if got := r.Read().Caret; got != 5 {
		t.Fatalf("end caret = %d, want 5", got)
	}
}

func TestRegionInsertWithoutSelectionRewrites(t *testing.T) {
	r := NewRegion("body", Element("p", Text("ab")))
	r.InsertText("c")
	snap := r.Read()
	if snap.Text != "abc" || snap.Caret != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRegionInsertIntoEmptyElement(t *testing.T) {
	r := NewRegion("body")
	r.Focus()
	r.InsertText("ki")
	if got := r.Read(); got.Text != "ki" || got.Caret != 2 {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestQualifies(t *testing.T) {
	if !Qualifies(NewField("a", KindText, "")) {
		t.Fatalf("text field should qualify")
	}
	if Qualifies(NewField("a", KindPassword, "")) {
		t.Fatalf("password field should not qualify")
	}
	r := NewRegion("b")
	if !Qualifies(r) {
		t.Fatalf("editable region should qualify")
	}
	r.Editable = false
	if Qualifies(r) {
		t.Fatalf("read-only region should not qualify")
	}
	if Qualifies(nil) {
		t.Fatalf("nil should not qualify")
	}
}

func TestRegionRuns(t *testing.T) {
	r := NewRegion("body", Element("p", Text("a"), Element("b", Text("b"))))
	runs := r.Runs()
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[1].Text != "b" || len(runs[1].Tags) != 2 || runs[1].Tags[0] != "b" {
		t.Fatalf("run[1] = %+v", runs[1])
	}
}
