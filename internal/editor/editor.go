package editor

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtranslit/internal/bridge"
	"github.com/kobzarvs/qtranslit/internal/config"
	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/observe"
	"github.com/kobzarvs/qtranslit/internal/overlay"
	"github.com/kobzarvs/qtranslit/internal/session"
	"github.com/kobzarvs/qtranslit/internal/suggest"
	"github.com/kobzarvs/qtranslit/internal/surface"
)

const (
	actionQuit          = "quit"
	actionSave          = "save"
	actionFocusNext     = "focus_next"
	actionFocusPrev     = "focus_prev"
	actionToggleEnabled = "toggle_enabled"
	actionToggleAuto    = "toggle_auto_replace"
	actionCycleLanguage = "cycle_language"
	actionMoveLeft      = "move_left"
	actionMoveRight     = "move_right"
	actionLineStart     = "line_start"
	actionLineEnd       = "line_end"
	actionBackspace     = "backspace"
	actionNewline       = "newline"
)

// Field names used for layout and persisted state.
const (
	FieldTitle = "title"
	FieldYear  = "year"
	FieldBody  = "body"
)

type Options struct {
	Channel   bridge.Channel
	Settings  config.Settings
	Languages config.Languages
	Scheduler suggest.Scheduler
	// Post runs f on the event loop.
	Post    func(f func())
	Metrics *observe.Metrics
	// OnSettings is called after the form itself changes a setting.
	OnSettings func(config.Settings)
	State      *session.Manager
}

type field struct {
	label string
	name  string
	input surface.Editable
}

// Editor is the form hosting the editable surfaces.
type Editor struct {
	fields []field
	focus  int
	title  *surface.Field
	year   *surface.Field
	body   *surface.Region

	session    *session.Session
	keymap     map[string]string
	languages  config.Languages
	onSettings func(config.Settings)
	state      *session.Manager

	labelWidth     int
	overlayMaxRows int
	dark           bool

	styleMain    tcell.Style
	styleStatus  tcell.Style
	styleLabel   tcell.Style
	styleField   tcell.Style
	styleFocus   tcell.Style
	styleMessage tcell.Style

	filename      string
	dirty         bool
	statusMessage string
	layoutName    string
	quit          bool

	// geometry of the last render
	fieldRows  []int
	fieldX     int
	fieldWidth int
	bodyTop    int
	bodyHeight int
	bodyScroll int
}

func New(cfg config.Config, opts Options) *Editor {
	keymap := make(map[string]string, len(cfg.Keymap.Form))
	for k, v := range cfg.Keymap.Form {
		keymap[k] = v
	}
	labelWidth := cfg.Editor.LabelWidth
	if labelWidth < 1 {
		labelWidth = 1
	}
	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorBlack)
	statusFg := parseColor(cfg.Theme.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(cfg.Theme.StatuslineBackground, tcell.ColorGray)
	labelFg := parseColor(cfg.Theme.LabelForeground, mainFg)
	fieldBg := parseColor(cfg.Theme.FieldBackground, mainBg)
	focusBg := parseColor(cfg.Theme.FocusBackground, fieldBg)
	dark := overlay.IsDark(cfg.Theme.Background, true)

	title := surface.NewField(FieldTitle, surface.KindText, "")
	year := surface.NewField(FieldYear, surface.KindNumber, "")
	body := surface.NewRegion(FieldBody)

	e := &Editor{
		title:          title,
		year:           year,
		body:           body,
		keymap:         keymap,
		languages:      opts.Languages,
		onSettings:     opts.OnSettings,
		state:          opts.State,
		labelWidth:     labelWidth,
		overlayMaxRows: cfg.Editor.OverlayMaxRows,
		dark:           dark,
		styleMain:      tcell.StyleDefault.Foreground(mainFg).Background(mainBg),
		styleStatus:    tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		styleLabel:     tcell.StyleDefault.Foreground(labelFg).Background(mainBg),
		styleField:     tcell.StyleDefault.Foreground(mainFg).Background(fieldBg),
		styleFocus:     tcell.StyleDefault.Foreground(mainFg).Background(focusBg),
		styleMessage:   tcell.StyleDefault.Foreground(mainFg).Background(mainBg),
	}
	e.fields = []field{
		{label: "Title", name: FieldTitle, input: title},
		{label: "Year", name: FieldYear, input: year},
		{label: "Body", name: FieldBody, input: body},
	}
	if len(e.languages.Languages) == 0 {
		e.languages = config.DefaultLanguages()
	}

	e.session = session.New(session.Options{
		Channel:   opts.Channel,
		Settings:  opts.Settings,
		Delay:     time.Duration(cfg.Editor.DebounceMs) * time.Millisecond,
		Timeout:   time.Duration(cfg.Provider.TimeoutMs) * time.Millisecond,
		Separator: cfg.Editor.Separator,
		Scheduler: opts.Scheduler,
		Post:      opts.Post,
		Replay:    e.dispatchKey,
		Dark:      dark,
		Metrics:   opts.Metrics,
	})
	ov := e.session.Overlay()
	ov.MaxRows = cfg.Editor.OverlayMaxRows
	ov.Styles = overlayStyles(cfg.Theme, dark)

	title.Focus()
	e.session.Focus(title)
	return e
}

func (e *Editor) Session() *session.Session {
	return e.session
}

func (e *Editor) Settings() config.Settings {
	return e.session.Settings()
}

// ApplySettings takes settings pushed from outside the form.
func (e *Editor) ApplySettings(st config.Settings) {
	e.session.ApplySettings(st)
}

func (e *Editor) SetKeyboardLayout(name string) {
	e.layoutName = name
}

func (e *Editor) SetStatusMessage(msg string) {
	e.statusMessage = msg
}

func (e *Editor) Focused() surface.Editable {
	return e.fields[e.focus].input
}

func (e *Editor) FocusedName() string {
	return e.fields[e.focus].name
}

// Value returns the text of the named field.
func (e *Editor) Value(name string) string {
	for _, f := range e.fields {
		if f.name == name {
			return f.input.Read().Text
		}
	}
	return ""
}

// OpenFile loads path into the body region.
func (e *Editor) OpenFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		data = nil
	}
	e.session.Blur()
	e.body = surface.RegionFromText(FieldBody, string(data))
	e.fields[2].input = e.body
	e.filename = path
	e.dirty = false
	e.bodyScroll = 0
	logger.Info("editor: opened file", "path", path, "bytes", len(data))
	e.restoreState()
	e.setFocus(e.focus)
	return nil
}

// Save writes the body region to path, or to the opened file.
func (e *Editor) Save(path string) error {
	if path == "" {
		if e.filename == "" {
			return errors.New("no file name")
		}
		path = e.filename
	}
	if err := os.WriteFile(path, []byte(e.body.Read().Text), 0o644); err != nil {
		return err
	}
	e.filename = path
	e.dirty = false
	return nil
}

// Shutdown records the form state for the opened file.
func (e *Editor) Shutdown() {
	e.session.Blur()
	e.saveState()
}

func (e *Editor) statePath() string {
	if e.filename == "" {
		return ""
	}
	abs, err := filepath.Abs(e.filename)
	if err != nil {
		return e.filename
	}
	return abs
}

func (e *Editor) restoreState() {
	if e.state == nil {
		return
	}
	path := e.statePath()
	if path == "" {
		return
	}
	doc, ok := e.state.Document(path)
	if !ok {
		return
	}
	if fs, ok := doc.Fields[FieldBody]; ok {
		e.body.SetCaret(fs.Caret)
		e.bodyScroll = fs.ScrollX
	}
	for i, f := range e.fields {
		if f.name == doc.ActiveField {
			e.focus = i
		}
	}
}

func (e *Editor) saveState() {
	if e.state == nil {
		return
	}
	path := e.statePath()
	if path == "" {
		return
	}
	e.state.SetDocument(path, session.DocumentState{
		Fields: map[string]session.FieldState{
			FieldBody: {Caret: e.body.Read().Caret, ScrollX: e.bodyScroll},
		},
		ActiveField: e.FocusedName(),
	})
}

// HandleKey processes a key and reports whether the form should quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if e.keymap[keyString(ev)] == actionQuit {
		return true
	}
	e.statusMessage = ""
	e.dispatchKey(ev)
	quit := e.quit
	e.quit = false
	return quit
}

func (e *Editor) dispatchKey(ev *tcell.EventKey) {
	if e.session.HandleKey(ev) {
		return
	}
	cur := e.Focused()
	switch action := e.keymap[keyString(ev)]; action {
	case actionQuit:
		e.quit = true
	case actionSave:
		if err := e.Save(""); err != nil {
			logger.Warn("editor: save failed", "path", e.filename, "err", err)
			e.statusMessage = err.Error()
		} else {
			e.statusMessage = "saved " + filepath.Base(e.filename)
		}
	case actionFocusNext:
		e.setFocus((e.focus + 1) % len(e.fields))
	case actionFocusPrev:
		e.setFocus((e.focus - 1 + len(e.fields)) % len(e.fields))
	case actionToggleEnabled:
		st := e.session.Settings()
		st.Enabled = !st.Enabled
		e.changeSettings(st)
	case actionToggleAuto:
		st := e.session.Settings()
		st.AutoReplace = !st.AutoReplace
		e.changeSettings(st)
	case actionCycleLanguage:
		st := e.session.Settings()
		st.Language = e.languages.Next(st.Language)
		e.changeSettings(st)
	case actionMoveLeft:
		cur.MoveCaret(-1)
		e.session.AfterEdit(session.EditNavigate)
	case actionMoveRight:
		cur.MoveCaret(1)
		e.session.AfterEdit(session.EditNavigate)
	case actionLineStart:
		cur.MoveHome()
		e.session.AfterEdit(session.EditNavigate)
	case actionLineEnd:
		cur.MoveEnd()
		e.session.AfterEdit(session.EditNavigate)
	case actionBackspace:
		cur.DeleteBackward()
		e.markEdited(cur)
		e.session.AfterEdit(session.EditInput)
	case actionNewline:
		if cur != surface.Editable(e.body) {
			return
		}
		cur.InsertText("\n")
		e.markEdited(cur)
		e.session.AfterEdit(session.EditInput)
	default:
		if ev.Key() != tcell.KeyRune || ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 {
			return
		}
		r := ev.Rune()
		if cur == surface.Editable(e.year) && (r < '0' || r > '9') {
			return
		}
		cur.InsertText(string(r))
		e.markEdited(cur)
		e.session.AfterEdit(session.EditInput)
	}
}

func (e *Editor) markEdited(cur surface.Editable) {
	if cur == surface.Editable(e.body) {
		e.dirty = true
	}
}

func (e *Editor) changeSettings(st config.Settings) {
	e.session.ApplySettings(st)
	if e.onSettings != nil {
		e.onSettings(st)
	}
}

func (e *Editor) setFocus(i int) {
	e.session.Blur()
	for _, f := range e.fields {
		f.input.Blur()
	}
	e.focus = i
	next := e.fields[i].input
	next.Focus()
	e.session.Focus(next)
}

// HandleMouse routes mouse events to the overlay first, then to the fields.
func (e *Editor) HandleMouse(ev *tcell.EventMouse) {
	if e.session.HandleMouse(ev) {
		return
	}
	switch ev.Buttons() {
	case tcell.WheelUp:
		if e.bodyScroll > 0 {
			e.bodyScroll--
		}
	case tcell.WheelDown:
		e.bodyScroll++
	case tcell.Button1:
		e.handleMouseClick(ev)
	}
}

func (e *Editor) handleMouseClick(ev *tcell.EventMouse) {
	x, y := ev.Position()
	for i, row := range e.fieldRows {
		f, ok := e.fields[i].input.(*surface.Field)
		if !ok || y != row {
			continue
		}
		if i != e.focus {
			e.setFocus(i)
		}
		rs := []rune(f.Value())
		start := min(f.ScrollX, len(rs))
		f.SetCaret(start + columnToOffset(rs[start:], x-e.fieldX))
		e.session.AfterEdit(session.EditNavigate)
		return
	}
	if y >= e.bodyTop && y < e.bodyTop+e.bodyHeight {
		if e.focus != 2 {
			e.setFocus(2)
		}
		e.body.SetCaret(bodyOffsetAt(e.body.Read().Text, e.bodyScroll+y-e.bodyTop, x-e.fieldX))
		e.session.AfterEdit(session.EditNavigate)
	}
}
