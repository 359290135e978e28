// Package replace writes a chosen candidate back into a surface.
package replace

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/surface"
)

// DefaultSeparator follows every committed word.
const DefaultSeparator = " "

// Engine commits text into the active surface. The zero value uses
// DefaultSeparator.
type Engine struct {
	Separator string
}

func (e Engine) separator() string {
	if e.Separator == "" {
		return DefaultSeparator
	}
	return e.Separator
}

// Commit writes before+chosen+separator and returns the caret, which sits
// right after the separator.
func (e Engine) Commit(s surface.Surface, before, chosen string) (int, error) {
	return e.CommitAround(s, before, chosen, "")
}

// CommitAround is Commit with the text that followed the word kept after the
// separator. A separator already leading after is not doubled.
func (e Engine) CommitAround(s surface.Surface, before, chosen, after string) (int, error) {
	if s == nil {
		return 0, errors.New("replace: no active surface")
	}
	sep := e.separator()
	after = strings.TrimPrefix(after, sep)

	caret := utf8.RuneCountInString(before) + utf8.RuneCountInString(chosen) + utf8.RuneCountInString(sep)
	text := before + chosen + sep + after
	if err := s.Replace(text, caret); err != nil {
		logger.Warn("replace: surface rejected commit", "err", err)
		return 0, err
	}
	return caret, nil
}
