// Package session owns the transliteration state of one form: the active
// surface, the requester, the overlay and any keystrokes held while a word
// is being finalized.
//
// Every method runs on the host event loop.
package session

import (
	"context"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtranslit/internal/bridge"
	"github.com/kobzarvs/qtranslit/internal/config"
	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/observe"
	"github.com/kobzarvs/qtranslit/internal/overlay"
	"github.com/kobzarvs/qtranslit/internal/replace"
	"github.com/kobzarvs/qtranslit/internal/suggest"
	"github.com/kobzarvs/qtranslit/internal/surface"
	"github.com/kobzarvs/qtranslit/internal/wordtrack"
)

// EditKind classifies an edit the host already applied to the surface.
type EditKind int

const (
	// EditInput inserted or removed characters.
	EditInput EditKind = iota
	// EditNavigate moved the caret without changing text.
	EditNavigate
)

const (
	commitCandidate = "candidate"
	commitFallback  = "fallback"
)

type Options struct {
	Channel   bridge.Channel
	Settings  config.Settings
	Delay     time.Duration
	Timeout   time.Duration
	Separator string
	Scheduler suggest.Scheduler
	// Post runs f on the event loop.
	Post func(f func())
	// Replay feeds a held keystroke back through the host's key handling.
	Replay  func(ev *tcell.EventKey)
	Dark    bool
	Metrics *observe.Metrics
}

type Session struct {
	active   surface.Surface
	settings config.Settings
	req      *suggest.Requester
	overlay  *overlay.Overlay
	engine   replace.Engine
	replay   func(*tcell.EventKey)
	metrics  *observe.Metrics

	// span is the word the open overlay was filled for. Any edit that
	// changes it closes the overlay.
	span wordtrack.Span

	// held is set while a delimiter keystroke is withheld from the surface.
	held      bool
	heldRune  rune
	awaiting  bool
	queue     []*tcell.EventKey
	replaying bool
}

func New(opts Options) *Session {
	s := &Session{
		settings: opts.Settings,
		overlay:  overlay.New(opts.Dark),
		engine:   replace.Engine{Separator: opts.Separator},
		replay:   opts.Replay,
		metrics:  opts.Metrics,
	}
	s.req = suggest.New(opts.Channel, s.word, s.apply, suggest.Options{
		Delay:     opts.Delay,
		Timeout:   opts.Timeout,
		Language:  opts.Settings.Language,
		Scheduler: opts.Scheduler,
		Post:      opts.Post,
		Metrics:   opts.Metrics,
	})
	return s
}

func (s *Session) Active() surface.Surface {
	return s.active
}

func (s *Session) Overlay() *overlay.Overlay {
	return s.overlay
}

func (s *Session) Settings() config.Settings {
	return s.settings
}

// Busy reports whether a delimiter finalization is still in flight.
func (s *Session) Busy() bool {
	return s.awaiting
}

func (s *Session) enabled() bool {
	return s.active != nil && s.settings.Enabled && !s.replaying
}

func (s *Session) word() (wordtrack.Span, bool) {
	if s.active == nil {
		return wordtrack.Span{}, false
	}
	return wordtrack.Capture(s.active.Read())
}

// Focus makes sf the active surface. Surfaces that do not qualify clear it.
func (s *Session) Focus(sf surface.Surface) {
	if s.active != nil {
		s.Blur()
	}
	if sf == nil || !surface.Qualifies(sf) {
		s.active = nil
		return
	}
	s.active = sf
	logger.Debug("session: focus", "surface", surfaceName(sf))
}

// Blur tears down the overlay and timer. A held delimiter lands in the
// surface being left, followed by any queued keystrokes.
func (s *Session) Blur() {
	if s.active == nil {
		return
	}
	sf := s.active
	s.req.Cancel()
	s.overlay.Close()
	held, queue := s.held, s.queue
	s.held, s.awaiting, s.queue = false, false, nil
	s.active = nil
	if held {
		s.insertHeld(sf)
	}
	s.replayRaw(queue)
}

// ApplySettings installs pushed settings. Disabling, or switching language,
// drops the overlay and any pending request.
func (s *Session) ApplySettings(st config.Settings) {
	prev := s.settings
	s.settings = st
	s.req.SetLanguage(st.Language)
	if (prev.Enabled && !st.Enabled) || prev.Language != st.Language {
		s.req.Cancel()
		s.overlay.Close()
		s.release(true)
	}
}

// HandleKey sees a key before the host edits the surface and reports whether
// it was consumed.
func (s *Session) HandleKey(ev *tcell.EventKey) bool {
	if !s.enabled() {
		return false
	}
	if s.awaiting {
		s.queue = append(s.queue, ev)
		return true
	}
	if s.overlay.IsOpen() {
		switch s.overlay.HandleKey(ev) {
		case overlay.ActionCommit:
			s.commitSelected()
			return true
		case overlay.ActionDismiss:
			s.dismiss()
			return true
		case overlay.ActionMove, overlay.ActionNone, overlay.ActionHover:
			return true
		}
		if s.held {
			s.dismiss()
		}
	}
	if isDelimiter(ev) {
		if _, ok := s.word(); !ok {
			return false
		}
		s.held, s.heldRune, s.awaiting = true, ev.Rune(), true
		if !s.req.Finalize() {
			s.held, s.awaiting = false, false
			return false
		}
		return true
	}
	return false
}

// AfterEdit observes an edit the host applied.
func (s *Session) AfterEdit(kind EditKind) {
	if !s.enabled() {
		return
	}
	if kind == EditNavigate {
		s.overlay.Close()
		s.req.Cancel()
		return
	}
	span, ok := s.word()
	if !ok {
		s.overlay.Close()
		s.req.Cancel()
		return
	}
	if s.overlay.IsOpen() && span != s.span {
		s.overlay.Close()
	}
	s.req.Input()
}

// HandleMouse routes mouse events to the open overlay and reports whether
// the host should ignore the event.
func (s *Session) HandleMouse(ev *tcell.EventMouse) bool {
	if !s.enabled() {
		return false
	}
	if s.awaiting {
		return ev.Buttons() != tcell.ButtonNone
	}
	if !s.overlay.IsOpen() {
		return false
	}
	switch s.overlay.HandleMouse(ev) {
	case overlay.ActionCommit:
		s.commitSelected()
		return true
	case overlay.ActionHover, overlay.ActionNone:
		return true
	case overlay.ActionDismiss:
		s.dismiss()
	}
	return false
}

// apply is the single point where a current reply touches the surface.
func (s *Session) apply(res suggest.Result) {
	if s.active == nil {
		s.release(false)
		return
	}
	snap := s.active.Read()
	span, ok := wordtrack.Capture(snap)
	if !ok {
		s.overlay.Close()
		s.release(true)
		return
	}
	switch {
	case res.Failed():
		if res.Err != nil {
			logger.Debug("session: provider failed, keeping word", "word", span.Word, "err", res.Err)
		}
		s.commit(snap, span, span.Word, commitFallback)
	case s.settings.AutoReplace:
		s.commit(snap, span, res.Suggestions[0], commitCandidate)
	default:
		s.span = span
		s.overlay.Title = span.Word
		s.overlay.Open(res.Suggestions)
		s.awaiting = false
		s.flush()
	}
}

func (s *Session) commitSelected() {
	chosen, ok := s.overlay.Selected()
	if !ok {
		return
	}
	snap := s.active.Read()
	span, ok := wordtrack.Capture(snap)
	if !ok || span != s.span {
		logger.Debug("session: word changed under the overlay, not committing", "listed", s.span.Word, "word", span.Word)
		s.overlay.Close()
		s.release(true)
		return
	}
	s.commit(snap, span, chosen, commitCandidate)
}

// commit writes chosen over span. The separator it appends stands in for a
// held delimiter.
func (s *Session) commit(snap surface.Snapshot, span wordtrack.Span, chosen, kind string) {
	before := wordtrack.Before(snap, span)
	after := wordtrack.After(snap, span)
	s.overlay.Close()
	s.req.Cancel()
	if _, err := s.engine.CommitAround(s.active, before, chosen, after); err != nil {
		logger.Warn("session: commit failed", "surface", surfaceName(s.active), "err", err)
		s.release(true)
		return
	}
	s.metrics.RecordCommit(context.Background(), kind)
	s.held = false
	s.release(false)
}

func (s *Session) dismiss() {
	s.overlay.Close()
	s.release(true)
}

// release ends a delimiter hold, optionally writing the delimiter, and
// replays whatever was typed meanwhile.
func (s *Session) release(reinsert bool) {
	if s.held && reinsert && s.active != nil {
		s.insertHeld(s.active)
	}
	s.held, s.awaiting = false, false
	s.flush()
}

func (s *Session) insertHeld(sf surface.Surface) {
	snap := sf.Read()
	rs := snap.Runes()
	caret := snap.Caret
	text := string(rs[:caret]) + string(s.heldRune) + string(rs[caret:])
	if err := sf.Replace(text, caret+1); err != nil {
		logger.Warn("session: reinsert delimiter failed", "surface", surfaceName(sf), "err", err)
	}
}

func (s *Session) flush() {
	pending := s.queue
	s.queue = nil
	for i, ev := range pending {
		if s.awaiting {
			s.queue = append(s.queue, pending[i:]...)
			return
		}
		if s.replay != nil {
			s.replay(ev)
		}
	}
}

// replayRaw feeds keystrokes to the host with interception off.
func (s *Session) replayRaw(queue []*tcell.EventKey) {
	if len(queue) == 0 || s.replay == nil {
		return
	}
	s.replaying = true
	defer func() { s.replaying = false }()
	for _, ev := range queue {
		s.replay(ev)
	}
}

func isDelimiter(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 {
		return false
	}
	return unicode.IsSpace(ev.Rune())
}

func surfaceName(sf surface.Surface) string {
	switch v := sf.(type) {
	case *surface.Field:
		return v.Name
	case *surface.Region:
		return v.Name
	}
	return ""
}
