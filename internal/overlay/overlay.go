// Package overlay is the candidate list shown next to the caret.
package overlay

import (
	"github.com/gdamore/tcell/v2"
)

type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Action tells the host what an input event meant to the overlay.
type Action int

const (
	// ActionPass means the event is not for the overlay.
	ActionPass Action = iota
	// ActionNone means the event was absorbed without effect.
	ActionNone
	ActionMove
	ActionHover
	ActionCommit
	ActionDismiss
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionHover:
		return "hover"
	case ActionCommit:
		return "commit"
	case ActionDismiss:
		return "dismiss"
	}
	return "pass"
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Overlay holds the candidate list and the highlighted row. It is owned by a
// single session and never shared between surfaces.
type Overlay struct {
	// Title is drawn in the top border, usually the word being resolved.
	Title string
	// MaxRows caps the visible rows; zero means 8.
	MaxRows int
	// Dark selects the palette used when no theme colour is set.
	Dark   bool
	Styles Styles

	items []string
	index int
	state State

	// geometry of the last render, used for mouse hit testing
	box   rect
	start int
	rows  int
}

func New(dark bool) *Overlay {
	return &Overlay{Dark: dark, MaxRows: 8}
}

func (o *Overlay) State() State {
	return o.state
}

func (o *Overlay) IsOpen() bool {
	return o.state == Open
}

// Open shows items. While already open the list is updated in place and the
// highlight survives when it still points at a row. An empty list closes.
func (o *Overlay) Open(items []string) {
	if len(items) == 0 {
		o.Close()
		return
	}
	o.items = append(o.items[:0], items...)
	if o.state != Open || o.index >= len(o.items) {
		o.index = 0
	}
	o.state = Open
}

func (o *Overlay) Close() {
	o.state = Closed
	o.items = o.items[:0]
	o.index = 0
	o.box = rect{}
	o.rows = 0
}

func (o *Overlay) Items() []string {
	return o.items
}

func (o *Overlay) Index() int {
	return o.index
}

func (o *Overlay) Next() {
	if len(o.items) == 0 {
		return
	}
	o.index = (o.index + 1) % len(o.items)
}

func (o *Overlay) Prev() {
	if len(o.items) == 0 {
		return
	}
	o.index = (o.index - 1 + len(o.items)) % len(o.items)
}

// Hover highlights row i and reports whether it exists.
func (o *Overlay) Hover(i int) bool {
	if i < 0 || i >= len(o.items) {
		return false
	}
	o.index = i
	return true
}

// Selected returns the highlighted candidate.
func (o *Overlay) Selected() (string, bool) {
	if o.state != Open || len(o.items) == 0 {
		return "", false
	}
	return o.items[o.index], true
}

// HandleKey interprets a key while open. Keys the overlay does not own pass.
func (o *Overlay) HandleKey(ev *tcell.EventKey) Action {
	if o.state != Open {
		return ActionPass
	}
	switch ev.Key() {
	case tcell.KeyDown:
		o.Next()
		return ActionMove
	case tcell.KeyUp:
		o.Prev()
		return ActionMove
	case tcell.KeyEnter, tcell.KeyTab:
		return ActionCommit
	case tcell.KeyEscape:
		o.Close()
		return ActionDismiss
	}
	return ActionPass
}

// HandleMouse hit-tests against the last rendered box. Motion over a row
// hovers it, a click on a row commits it, a click elsewhere dismisses.
func (o *Overlay) HandleMouse(ev *tcell.EventMouse) Action {
	if o.state != Open {
		return ActionPass
	}
	x, y := ev.Position()
	row, onRow := o.rowAt(x, y)
	if ev.Buttons()&tcell.Button1 != 0 {
		if onRow {
			o.index = row
			return ActionCommit
		}
		if o.box.contains(x, y) {
			return ActionNone
		}
		o.Close()
		return ActionDismiss
	}
	if ev.Buttons() == tcell.ButtonNone && onRow {
		if row != o.index {
			o.index = row
		}
		return ActionHover
	}
	return ActionPass
}

func (o *Overlay) rowAt(x, y int) (int, bool) {
	if o.rows == 0 || !o.box.contains(x, y) {
		return 0, false
	}
	if x == o.box.x || x == o.box.x+o.box.w-1 {
		return 0, false
	}
	line := y - o.box.y - 1
	if line < 0 || line >= o.rows {
		return 0, false
	}
	idx := o.start + line
	if idx >= len(o.items) {
		return 0, false
	}
	return idx, true
}
