package wordtrack

import (
	"strings"
	"testing"
	"unicode"

	"github.com/kobzarvs/qtranslit/internal/surface"
)

func TestCapture(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		caret int
		start int
		word  string
		ok    bool
	}{
		{"empty", "", 0, 0, "", false},
		{"single word", "ki", 2, 0, "ki", true},
		{"after space", "namma ki", 8, 6, "ki", true},
		{"mid word", "namma kannada", 9, 6, "kan", true},
		{"right after space", "namma ", 6, 6, "", false},
		{"newline boundary", "ab\ncd", 5, 3, "cd", true},
		{"tab boundary", "ab\tcd", 4, 3, "c", true},
		{"caret past end", "ki", 9, 0, "ki", true},
		{"unicode before", "ಕನ್ನಡ ki", 8, 6, "ki", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			span, ok := Capture(surface.Snapshot{Text: tc.text, Caret: tc.caret})
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if span.Start != tc.start {
				t.Fatalf("start = %d, want %d", span.Start, tc.start)
			}
			if span.Word != tc.word {
				t.Fatalf("word = %q, want %q", span.Word, tc.word)
			}
		})
	}
}

func TestCaptureInvariants(t *testing.T) {
	texts := []string{"", "a", "a b", "  lead", "trail  ", "ಕನ್ನಡ ಭಾಷೆ ki", "x\ny\tz w"}
	for _, text := range texts {
		rs := []rune(text)
		for caret := 0; caret <= len(rs); caret++ {
			snap := surface.Snapshot{Text: text, Caret: caret}
			span, _ := Capture(snap)
			if span.Start > caret {
				t.Fatalf("%q@%d: start %d > caret", text, caret, span.Start)
			}
			if span.End != caret {
				t.Fatalf("%q@%d: end = %d, want caret", text, caret, span.End)
			}
			if span.Word != string(rs[span.Start:caret]) {
				t.Fatalf("%q@%d: word = %q, want %q", text, caret, span.Word, string(rs[span.Start:caret]))
			}
			if strings.IndexFunc(span.Word, unicode.IsSpace) >= 0 {
				t.Fatalf("%q@%d: word %q contains whitespace", text, caret, span.Word)
			}
		}
	}
}

func TestBeforeAfter(t *testing.T) {
	snap := surface.Snapshot{Text: "namma ki rest", Caret: 8}
	span, _ := Capture(snap)
	if got := Before(snap, span); got != "namma " {
		t.Fatalf("Before = %q, want %q", got, "namma ")
	}
	if got := After(snap, span); got != " rest" {
		t.Fatalf("After = %q, want %q", got, " rest")
	}
}
