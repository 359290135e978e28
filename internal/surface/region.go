package surface

import (
	"strings"
	"unicode/utf8"
)

type NodeType int

const (
	TextNode NodeType = iota
	ElementNode
)

// Node is one entry of a rich region's content tree.
type Node struct {
	Type     NodeType
	Tag      string
	Data     string
	Parent   *Node
	Children []*Node
}

func Text(s string) *Node {
	return &Node{Type: TextNode, Data: s}
}

func Element(tag string, children ...*Node) *Node {
	n := &Node{Type: ElementNode, Tag: tag}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

func (n *Node) insertChild(i int, c *Node) {
	c.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
}

// TextContent concatenates every descendant text node in document order.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	n.walkText(func(t *Node) bool {
		b.WriteString(t.Data)
		return true
	})
	return b.String()
}

func (n *Node) walkText(fn func(t *Node) bool) bool {
	if n.Type == TextNode {
		return fn(n)
	}
	for _, c := range n.Children {
		if !c.walkText(fn) {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Selection is a collapsed DOM-style selection: an anchor node and an offset
// into it (runes for text nodes, child index for elements).
type Selection struct {
	Anchor *Node
	Offset int
}

// Region is a rich editable region backed by a node tree.
type Region struct {
	Name     string
	Editable bool
	Root     *Node
	sel      *Selection
	focused  bool
}

func NewRegion(name string, children ...*Node) *Region {
	return &Region{Name: name, Editable: true, Root: Element("div", children...)}
}

// RegionFromText builds a region with one paragraph element per line.
func RegionFromText(name, text string) *Region {
	r := NewRegion(name)
	if text == "" {
		return r
	}
	lines := strings.SplitAfter(text, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		r.Root.AppendChild(Element("p", Text(line)))
	}
	return r
}

func (r *Region) SupportsSelection() bool {
	return r.sel != nil
}

func (r *Region) Selection() (Selection, bool) {
	if r.sel == nil {
		return Selection{}, false
	}
	return *r.sel, true
}

func (r *Region) SetSelection(anchor *Node, offset int) {
	r.sel = &Selection{Anchor: anchor, Offset: offset}
}

func (r *Region) ClearSelection() {
	r.sel = nil
}

func (r *Region) Read() Snapshot {
	text := r.Root.TextContent()
	n := runeLen(text)
	caret := n
	if r.sel != nil {
		if pos, ok := r.linearOffset(r.sel.Anchor, r.sel.Offset); ok {
			caret = clampRange(pos, 0, n)
		}
	}
	return Snapshot{Text: text, Caret: caret}
}

// linearOffset converts a DOM position into a rune offset from the start of
// the region by summing the text of preceding siblings up to the root.
func (r *Region) linearOffset(anchor *Node, offset int) (int, bool) {
	if anchor == nil {
		return 0, false
	}
	pos := 0
	if anchor.Type == TextNode {
		pos = clampRange(offset, 0, runeLen(anchor.Data))
	} else {
		limit := clampRange(offset, 0, len(anchor.Children))
		for _, c := range anchor.Children[:limit] {
			pos += runeLen(c.TextContent())
		}
	}
	for n := anchor; n != r.Root; n = n.Parent {
		if n.Parent == nil {
			return 0, false
		}
		for _, sib := range n.Parent.Children {
			if sib == n {
				break
			}
			pos += runeLen(sib.TextContent())
		}
	}
	return pos, true
}

// Replace flattens the region into a single text node holding newText and
// places a collapsed selection at caretAfter.
func (r *Region) Replace(newText string, caretAfter int) error {
	if !r.Editable {
		return ErrNotEditable
	}
	var node *Node
	r.Root.walkText(func(t *Node) bool {
		node = t
		return false
	})
	if node == nil {
		node = Text("")
	}
	node.Data = newText
	node.Parent = r.Root
	r.Root.Children = []*Node{node}
	r.SetSelection(node, clampRange(caretAfter, 0, runeLen(newText)))
	r.focused = true
	return nil
}

// locate finds the text node holding linear offset pos. Ties at a node
// boundary resolve to the end of the earlier node.
func (r *Region) locate(pos int) (*Node, int, bool) {
	var (
		found *Node
		local int
		start int
	)
	r.Root.walkText(func(t *Node) bool {
		l := runeLen(t.Data)
		if pos >= start && pos <= start+l {
			found = t
			local = pos - start
			return false
		}
		start += l
		return true
	})
	return found, local, found != nil
}

func (r *Region) InsertText(text string) {
	if text == "" || !r.Editable {
		return
	}
	if r.sel == nil {
		snap := r.Read()
		_ = r.Replace(snap.Text+text, runeLen(snap.Text)+runeLen(text))
		return
	}
	anchor, off := r.sel.Anchor, r.sel.Offset
	if anchor.Type == ElementNode {
		idx := clampRange(off, 0, len(anchor.Children))
		if idx > 0 && anchor.Children[idx-1].Type == TextNode {
			prev := anchor.Children[idx-1]
			anchor, off = prev, runeLen(prev.Data)
		} else {
			t := Text("")
			anchor.insertChild(idx, t)
			anchor, off = t, 0
		}
	}
	rs := []rune(anchor.Data)
	off = clampRange(off, 0, len(rs))
	anchor.Data = string(rs[:off]) + text + string(rs[off:])
	r.SetSelection(anchor, off+runeLen(text))
}

func (r *Region) DeleteBackward() {
	if !r.Editable {
		return
	}
	snap := r.Read()
	if snap.Caret == 0 {
		return
	}
	target := snap.Caret - 1
	var (
		node  *Node
		local int
		start int
	)
	r.Root.walkText(func(t *Node) bool {
		l := runeLen(t.Data)
		if target >= start && target < start+l {
			node = t
			local = target - start
			return false
		}
		start += l
		return true
	})
	if node == nil {
		return
	}
	rs := []rune(node.Data)
	node.Data = string(append(rs[:local:local], rs[local+1:]...))
	r.SetSelection(node, local)
}

func (r *Region) setCaret(pos int) {
	if node, local, ok := r.locate(pos); ok {
		r.SetSelection(node, local)
		return
	}
	r.SetSelection(r.Root, 0)
}

// SetCaret collapses the selection at rune offset pos.
func (r *Region) SetCaret(pos int) {
	r.setCaret(clampRange(pos, 0, runeLen(r.Root.TextContent())))
}

func (r *Region) MoveCaret(delta int) {
	snap := r.Read()
	r.setCaret(clampRange(snap.Caret+delta, 0, runeLen(snap.Text)))
}

func (r *Region) MoveHome() {
	snap := r.Read()
	rs := snap.Runes()
	pos := snap.Caret
	for pos > 0 && rs[pos-1] != '\n' {
		pos--
	}
	r.setCaret(pos)
}

func (r *Region) MoveEnd() {
	snap := r.Read()
	rs := snap.Runes()
	pos := snap.Caret
	for pos < len(rs) && rs[pos] != '\n' {
		pos++
	}
	r.setCaret(pos)
}

func (r *Region) Focus() {
	r.focused = true
	if r.sel == nil {
		r.setCaret(runeLen(r.Root.TextContent()))
	}
}

func (r *Region) Blur() { r.focused = false }

func (r *Region) Focused() bool { return r.focused }

// Run is a stretch of text together with the element tags enclosing it.
type Run struct {
	Text string
	Tags []string
}

// Runs lists text nodes in document order with their enclosing tags.
func (r *Region) Runs() []Run {
	var runs []Run
	r.Root.walkText(func(t *Node) bool {
		var tags []string
		for p := t.Parent; p != nil && p != r.Root; p = p.Parent {
			tags = append(tags, p.Tag)
		}
		runs = append(runs, Run{Text: t.Data, Tags: tags})
		return true
	})
	return runs
}
