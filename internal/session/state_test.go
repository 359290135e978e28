package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManagerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.json")
	m := NewManagerAt(path)
	doc := DocumentState{
		Fields: map[string]FieldState{
			"title": {Caret: 3},
			"body":  {Caret: 12, ScrollX: 2},
		},
		ActiveField: "body",
	}
	m.SetDocument("/tmp/note.txt", doc)
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	m2 := NewManagerAt(path)
	defer m2.Stop()
	got, ok := m2.Document("/tmp/note.txt")
	if !ok {
		t.Fatalf("Document not restored")
	}
	if got.ActiveField != "body" || got.Fields["body"].Caret != 12 || got.Fields["body"].ScrollX != 2 {
		t.Fatalf("Document = %+v, want restored body state", got)
	}
}

func TestManagerSaveSkipsClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	m := NewManagerAt(path)
	defer m.Stop()
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("clean Save wrote %s", path)
	}
}

func TestManagerIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := NewManagerAt(path)
	defer m.Stop()
	if _, ok := m.Document("/x"); ok {
		t.Fatalf("Document found in corrupt state")
	}
	m.SetDocument("/x", DocumentState{ActiveField: "title"})
	if _, ok := m.Document("/x"); !ok {
		t.Fatalf("SetDocument after corrupt load failed")
	}
}
