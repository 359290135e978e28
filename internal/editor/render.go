package editor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/qtranslit/internal/config"
	"github.com/kobzarvs/qtranslit/internal/overlay"
	"github.com/kobzarvs/qtranslit/internal/surface"
)

const hintLine = " tab next field | ctrl+t on/off | ctrl+l language | ctrl+a auto | ctrl+s save | ctrl+q quit"

func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	s.SetStyle(e.styleMain)
	s.Clear()

	e.fieldX = e.labelWidth + 1
	e.fieldWidth = w - e.fieldX - 1
	if e.fieldWidth < 1 {
		e.fieldWidth = 1
	}

	cx, cy := -1, -1
	e.fieldRows = e.fieldRows[:0]
	row := 0
	for i, f := range e.fields {
		fld, ok := f.input.(*surface.Field)
		if !ok {
			continue
		}
		e.fieldRows = append(e.fieldRows, row)
		if row < h-2 {
			x, focused := e.drawField(s, row, f.label, fld, i == e.focus)
			if focused {
				cx, cy = x, row
			}
		}
		row++
	}

	e.bodyTop = row + 1
	e.bodyHeight = h - 2 - e.bodyTop
	if e.bodyHeight > 0 {
		drawLabel(s, 0, e.bodyTop, e.labelWidth, "Body", e.styleLabel)
		x, y, ok := e.drawBody(s)
		if ok && e.focus == len(e.fields)-1 {
			cx, cy = x, y
		}
	}

	statusY := h - 2
	msgY := h - 1
	if statusY >= 0 {
		e.renderStatusline(s, w, statusY)
	}
	if msgY >= 0 && msgY != statusY {
		e.renderMessageline(s, w, msgY)
	}

	ov := e.session.Overlay()
	if ov.IsOpen() && cx >= 0 {
		ov.Render(s, cx, cy)
	}

	if cx < 0 || cy < 0 {
		s.HideCursor()
		s.Show()
		return
	}
	s.SetCursorStyle(tcell.CursorStyleSteadyBar)
	s.ShowCursor(cx, cy)
	s.Show()
}

func drawLabel(s tcell.Screen, x, y, width int, label string, style tcell.Style) {
	overlay.DrawString(s, x, y, width, label, style)
}

// drawField draws a flat control and returns the caret column.
func (e *Editor) drawField(s tcell.Screen, y int, label string, f *surface.Field, focused bool) (int, bool) {
	drawLabel(s, 0, y, e.labelWidth, label, e.styleLabel)
	style := e.styleField
	if focused {
		style = e.styleFocus
	}
	for x := 0; x < e.fieldWidth; x++ {
		s.SetContent(e.fieldX+x, y, ' ', nil, style)
	}
	f.EnsureCaretVisible(e.fieldWidth)
	rs := []rune(f.Value())
	start := min(f.ScrollX, len(rs))
	overlay.DrawString(s, e.fieldX, y, e.fieldWidth, string(rs[start:]), style)
	caret := f.Read().Caret
	if caret < start {
		caret = start
	}
	return e.fieldX + overlay.StringWidth(string(rs[start:caret])), focused
}

// drawBody draws the rich region line by line and returns the caret cell.
func (e *Editor) drawBody(s tcell.Screen) (int, int, bool) {
	snap := e.body.Read()
	lines := strings.Split(snap.Text, "\n")
	caretLine, caretCol := lineCol(snap.Text, snap.Caret)

	if caretLine < e.bodyScroll {
		e.bodyScroll = caretLine
	}
	if caretLine >= e.bodyScroll+e.bodyHeight {
		e.bodyScroll = caretLine - e.bodyHeight + 1
	}
	if maxScroll := len(lines) - 1; e.bodyScroll > maxScroll {
		e.bodyScroll = maxScroll
	}
	if e.bodyScroll < 0 {
		e.bodyScroll = 0
	}

	style := e.styleField
	if e.focus == len(e.fields)-1 {
		style = e.styleFocus
	}
	for i := 0; i < e.bodyHeight; i++ {
		y := e.bodyTop + i
		for x := 0; x < e.fieldWidth; x++ {
			s.SetContent(e.fieldX+x, y, ' ', nil, style)
		}
		idx := e.bodyScroll + i
		if idx < len(lines) {
			overlay.DrawString(s, e.fieldX, y, e.fieldWidth, lines[idx], style)
		}
	}

	if caretLine < e.bodyScroll || caretLine >= e.bodyScroll+e.bodyHeight {
		return 0, 0, false
	}
	line := []rune(lines[caretLine])
	x := e.fieldX + overlay.StringWidth(string(line[:caretCol]))
	if x >= e.fieldX+e.fieldWidth {
		x = e.fieldX + e.fieldWidth - 1
	}
	return x, e.bodyTop + caretLine - e.bodyScroll, true
}

// lineCol converts a rune offset into a line index and rune column.
func lineCol(text string, caret int) (int, int) {
	line, col := 0, 0
	for i, r := range []rune(text) {
		if i >= caret {
			break
		}
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

// bodyOffsetAt is the rune offset of screen column col on line.
func bodyOffsetAt(text string, line, col int) int {
	lines := strings.Split(text, "\n")
	if line < 0 {
		return 0
	}
	if line >= len(lines) {
		return len([]rune(text))
	}
	offset := 0
	for _, l := range lines[:line] {
		offset += len([]rune(l)) + 1
	}
	return offset + columnToOffset([]rune(lines[line]), col)
}

// columnToOffset maps a screen column to a rune offset, snapping to grapheme
// boundaries.
func columnToOffset(rs []rune, col int) int {
	if col <= 0 {
		return 0
	}
	used, offset := 0, 0
	g := uniseg.NewGraphemes(string(rs))
	for g.Next() {
		w := g.Width()
		if used+w > col {
			break
		}
		used += w
		offset += len(g.Runes())
	}
	return offset
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	name := e.filename
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	dirty := ""
	if e.dirty {
		dirty = "*"
	}

	status := fmt.Sprintf(" QTRANSLIT | %s%s ", name, dirty)
	if e.session.Busy() {
		status += "| ... "
	}

	st := e.session.Settings()
	lang := st.Language
	if l := e.languages.Match(st.Language); l != nil {
		lang = l.Code + " " + l.Name
	}
	enabled := "OFF"
	if st.Enabled {
		enabled = "ON"
	}
	right := fmt.Sprintf(" %s | %s", lang, enabled)
	if st.AutoReplace {
		right += " | AUTO"
	}
	if e.layoutName != "" {
		right = right + " | " + e.layoutName
	}
	right += " "

	line := composeStatusLine(status, right, w)
	for x, r := range line {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, e.styleStatus)
	}
}

func (e *Editor) renderMessageline(s tcell.Screen, w, y int) {
	clearLine(s, y, w, e.styleMessage)
	msg := hintLine
	if e.statusMessage != "" {
		msg = " " + e.statusMessage
	}
	overlay.DrawString(s, 0, y, w, msg, e.styleMessage)
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := width - len(leftRunes) - len(rightRunes)
	if spaceCount < 0 {
		spaceCount = 0
	}
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := 0; i < spaceCount; i++ {
		line = append(line, ' ')
	}
	line = append(line, rightRunes...)
	return line
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

// overlayStyles layers the theme's overlay colours over the default palette.
func overlayStyles(t config.Theme, dark bool) overlay.Styles {
	base := overlay.Palette(dark)
	itemFg, itemBg, _ := base.Item.Decompose()
	selFg, selBg, _ := base.Selected.Decompose()
	borderFg, _, _ := base.Border.Decompose()

	itemFg = parseColor(t.OverlayForeground, itemFg)
	itemBg = parseColor(t.OverlayBackground, itemBg)
	selFg = parseColor(t.OverlaySelectedForeground, selFg)
	selBg = parseColor(t.OverlaySelectedBackground, selBg)
	borderFg = parseColor(t.OverlayBorderForeground, borderFg)
	return overlay.Styles{
		Item:     tcell.StyleDefault.Foreground(itemFg).Background(itemBg),
		Selected: tcell.StyleDefault.Foreground(selFg).Background(selBg),
		Border:   tcell.StyleDefault.Foreground(borderFg).Background(itemBg),
	}
}
