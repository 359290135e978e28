package overlay

import (
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Styles are the cells used to draw the box.
type Styles struct {
	Item     tcell.Style
	Selected tcell.Style
	Border   tcell.Style
}

// Palette returns the default styles for a dark or light host.
func Palette(dark bool) Styles {
	if dark {
		return Styles{
			Item:     tcell.StyleDefault.Foreground(tcell.NewHexColor(0xE6E1CF)).Background(tcell.NewHexColor(0x1F2430)),
			Selected: tcell.StyleDefault.Foreground(tcell.NewHexColor(0x0A0E14)).Background(tcell.NewHexColor(0xFFB454)),
			Border:   tcell.StyleDefault.Foreground(tcell.NewHexColor(0x5C6773)).Background(tcell.NewHexColor(0x1F2430)),
		}
	}
	return Styles{
		Item:     tcell.StyleDefault.Foreground(tcell.NewHexColor(0x1B1B1B)).Background(tcell.NewHexColor(0xF3F3F3)),
		Selected: tcell.StyleDefault.Foreground(tcell.NewHexColor(0xFFFFFF)).Background(tcell.NewHexColor(0x3366CC)),
		Border:   tcell.StyleDefault.Foreground(tcell.NewHexColor(0x8A8A8A)).Background(tcell.NewHexColor(0xF3F3F3)),
	}
}

// IsDark reports whether a "#rrggbb" background reads as dark. Unparseable
// values return fallback.
func IsDark(hex string, fallback bool) bool {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	l, _, _ := c.Lab()
	return l < 0.5
}

// StringWidth is the display width of s in terminal cells.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// DrawString draws s at (x, y) one grapheme cluster per cell group and stops
// before exceeding maxWidth cells. It returns the width drawn.
func DrawString(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) int {
	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		rs := g.Runes()
		w := g.Width()
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		s.SetContent(x+used, y, rs[0], rs[1:], style)
		used += w
	}
	return used
}

func (o *Overlay) styles() Styles {
	if o.Styles == (Styles{}) {
		return Palette(o.Dark)
	}
	return o.Styles
}

// Render draws the box just below the caret cell (anchorX, anchorY), or
// above it when there is no room below.
func (o *Overlay) Render(s tcell.Screen, anchorX, anchorY int) {
	if o.state != Open || len(o.items) == 0 {
		return
	}
	w, h := s.Size()
	if w < 6 || h < 3 {
		return
	}

	maxRows := o.MaxRows
	if maxRows <= 0 {
		maxRows = 8
	}
	listHeight := len(o.items)
	if listHeight > maxRows {
		listHeight = maxRows
	}

	maxItem := StringWidth(o.Title) + 2
	for _, item := range o.items {
		if l := StringWidth(item) + 2; l > maxItem {
			maxItem = l
		}
	}
	boxWidth := maxItem + 2
	if boxWidth > w {
		boxWidth = w
	}
	boxHeight := listHeight + 2

	y0 := anchorY + 1
	if y0+boxHeight > h {
		y0 = anchorY - boxHeight
	}
	if y0 < 0 {
		y0 = 0
		if boxHeight > h {
			boxHeight = h
			listHeight = boxHeight - 2
		}
	}
	x0 := anchorX
	if x0+boxWidth > w {
		x0 = w - boxWidth
	}
	if x0 < 0 {
		x0 = 0
	}

	st := o.styles()
	innerWidth := boxWidth - 2
	for x := 0; x < boxWidth; x++ {
		chTop, chBottom := tcell.RuneHLine, tcell.RuneHLine
		if x == 0 {
			chTop, chBottom = tcell.RuneULCorner, tcell.RuneLLCorner
		} else if x == boxWidth-1 {
			chTop, chBottom = tcell.RuneURCorner, tcell.RuneLRCorner
		}
		s.SetContent(x0+x, y0, chTop, nil, st.Border)
		s.SetContent(x0+x, y0+boxHeight-1, chBottom, nil, st.Border)
	}
	for y := 1; y < boxHeight-1; y++ {
		s.SetContent(x0, y0+y, tcell.RuneVLine, nil, st.Border)
		s.SetContent(x0+boxWidth-1, y0+y, tcell.RuneVLine, nil, st.Border)
	}
	if o.Title != "" && innerWidth > 2 {
		DrawString(s, x0+2, y0, innerWidth-2, o.Title, st.Border)
	}

	start := o.index - listHeight/2
	maxStart := len(o.items) - listHeight
	if maxStart < 0 {
		maxStart = 0
	}
	if start < 0 {
		start = 0
	}
	if start > maxStart {
		start = maxStart
	}

	for i := 0; i < listHeight; i++ {
		idx := start + i
		style := st.Item
		if idx == o.index {
			style = st.Selected
		}
		lineY := y0 + 1 + i
		for x := 0; x < innerWidth; x++ {
			s.SetContent(x0+1+x, lineY, ' ', nil, style)
		}
		if idx < len(o.items) && innerWidth > 1 {
			DrawString(s, x0+2, lineY, innerWidth-1, o.items[idx], style)
		}
	}

	o.box = rect{x: x0, y: y0, w: boxWidth, h: boxHeight}
	o.start = start
	o.rows = listHeight
}
