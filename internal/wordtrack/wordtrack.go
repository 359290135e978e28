// Package wordtrack finds the word being typed at the caret.
package wordtrack

import (
	"unicode"

	"github.com/kobzarvs/qtranslit/internal/surface"
)

// Span is the word under capture. End is always the caret at capture time.
type Span struct {
	Start int
	End   int
	Word  string
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Capture scans back from the caret to the nearest whitespace. ok is false
// when there is no active word.
func Capture(snap surface.Snapshot) (Span, bool) {
	rs := snap.Runes()
	caret := snap.Caret
	if caret < 0 {
		caret = 0
	}
	if caret > len(rs) {
		caret = len(rs)
	}
	start := caret
	for start > 0 && !unicode.IsSpace(rs[start-1]) {
		start--
	}
	span := Span{Start: start, End: caret, Word: string(rs[start:caret])}
	return span, span.Len() > 0
}

// Before returns the text preceding the span.
func Before(snap surface.Snapshot, span Span) string {
	rs := snap.Runes()
	if span.Start > len(rs) {
		return snap.Text
	}
	return string(rs[:span.Start])
}

// After returns the text following the span.
func After(snap surface.Snapshot, span Span) string {
	rs := snap.Runes()
	if span.End > len(rs) {
		return ""
	}
	return string(rs[span.End:])
}
