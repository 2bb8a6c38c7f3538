package layout

import (
	"github.com/sneedgroup-holder/wink-browser/pkg/css"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
	"github.com/sneedgroup-holder/wink-browser/pkg/text"
)

// MediaSizer supplies intrinsic dimensions for replaced elements.
// Returning ok=false leaves the element a zero-size placeholder until
// the media arrives.
type MediaSizer func(n *dom.Node) (w, h float64, ok bool)

// Engine turns a styled DOM into a box tree. Block boxes stack
// vertically; inline content flows into line boxes with greedy
// breaking at whitespace.
type Engine struct {
	resolver *css.Resolver
	measurer *text.Measurer
	media    MediaSizer

	viewportWidth float64
}

func NewEngine(resolver *css.Resolver, measurer *text.Measurer, viewportWidth float64) *Engine {
	if measurer == nil {
		measurer = text.NewMeasurer()
	}
	return &Engine{
		resolver:      resolver,
		measurer:      measurer,
		viewportWidth: viewportWidth,
	}
}

// SetMediaSizer installs the intrinsic-size source for replaced
// elements.
func (e *Engine) SetMediaSizer(m MediaSizer) { e.media = m }

// Layout builds and positions the box tree for the whole document.
func (e *Engine) Layout(doc *dom.Document) *Box {
	root := &Box{Kind: BlockBox, Node: doc.Root, Width: e.viewportWidth}
	e.buildChildren(root, doc.Root)
	e.layoutBlockContent(root)
	return root
}

func (e *Engine) style(n *dom.Node) *css.Computed {
	if e.resolver == nil {
		return nil
	}
	return e.resolver.Style(n.ID)
}

// buildChildren generates boxes for n's children under parent,
// wrapping inline runs in anonymous blocks when block siblings are
// present.
func (e *Engine) buildChildren(parent *Box, n *dom.Node) {
	kids := e.generate(n)
	if !hasBlockChild(kids) {
		attach(parent, kids)
		return
	}
	// Mixed content: consecutive inline-level boxes get an anonymous
	// block wrapper so the parent only stacks blocks.
	var run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		anon := &Box{Kind: AnonymousBox}
		attach(anon, run)
		attach(parent, []*Box{anon})
		run = nil
	}
	for _, k := range kids {
		if isBlockLevelBox(k) {
			flush()
			attach(parent, []*Box{k})
		} else {
			run = append(run, k)
		}
	}
	flush()
}

// generate produces the unpositioned boxes for n's children.
func (e *Engine) generate(n *dom.Node) []*Box {
	var out []*Box
	for _, child := range n.Children {
		switch child.Kind {
		case dom.TextNode:
			if child.Text == "" {
				continue
			}
			out = append(out, &Box{Kind: TextBox, Node: child, Text: child.Text})
		case dom.ElementNode:
			style := e.style(child)
			if style.GetDisplay() == css.DisplayNone {
				continue
			}
			box := &Box{Node: child, Style: style}
			switch {
			case isReplaced(child):
				box.Kind = ReplacedBox
			case style.GetDisplay() == css.DisplayInline:
				box.Kind = InlineBox
				e.buildChildren(box, child)
			default:
				box.Kind = BlockBox
				box.Margin = style.GetMargin()
				box.Border = style.GetBorderWidth()
				box.Padding = style.GetPadding()
				e.buildChildren(box, child)
			}
			out = append(out, box)
		}
	}
	return out
}

func attach(parent *Box, kids []*Box) {
	for _, k := range kids {
		k.Parent = parent
	}
	parent.Children = append(parent.Children, kids...)
}

func isBlockLevelBox(b *Box) bool {
	return b.Kind == BlockBox || b.Kind == AnonymousBox
}

func hasBlockChild(kids []*Box) bool {
	for _, k := range kids {
		if isBlockLevelBox(k) {
			return true
		}
	}
	return false
}

func isReplaced(n *dom.Node) bool {
	return n.Tag == "img"
}

// layoutBlockContent positions the children of a block container whose
// position, width, and edges are already set.
func (e *Engine) layoutBlockContent(b *Box) {
	if len(b.Children) > 0 && !isBlockLevelBox(b.Children[0]) {
		e.layoutInlineContent(b)
	} else {
		e.stackBlocks(b)
	}
	if h, ok := b.Style.GetLength("height"); ok {
		b.Height = h
	}
}

// stackBlocks lays the block-level children out top to bottom.
func (e *Engine) stackBlocks(b *Box) {
	cursorY := b.Y
	for _, child := range b.Children {
		child.Width = b.Width - child.Margin.Left - child.Margin.Right -
			child.Border.Left - child.Border.Right -
			child.Padding.Left - child.Padding.Right
		if w, ok := child.Style.GetLength("width"); ok {
			child.Width = w
		}
		if child.Width < 0 {
			child.Width = 0
		}
		child.X = b.X + child.Margin.Left + child.Border.Left + child.Padding.Left
		child.Y = cursorY + child.Margin.Top + child.Border.Top + child.Padding.Top
		e.layoutBlockContent(child)
		cursorY += child.OuterHeight()
	}
	b.Height = cursorY - b.Y
}

// inlineFlow is the cursor state while filling line boxes.
type inlineFlow struct {
	e     *Engine
	block *Box

	lines []*LineBox
	cur   *LineBox
	curX  float64 // offset from the block's content left edge
}

// layoutInlineContent flows the container's inline content into line
// boxes.
func (e *Engine) layoutInlineContent(b *Box) {
	flow := &inlineFlow{e: e, block: b}
	flow.newLine()
	for _, child := range b.Children {
		flow.place(child, e.inheritedStyle(b))
	}
	flow.finish()

	b.Lines = flow.lines
	height := 0.0
	for _, line := range flow.lines {
		height += line.Height
	}
	b.Height = height

	// Inline element bounds cover their fragments.
	for _, child := range b.Children {
		if child.Kind == InlineBox {
			setInlineBounds(child)
		}
	}
}

// inheritedStyle is the style text fragments fall back to: the nearest
// element ancestor of the flow.
func (e *Engine) inheritedStyle(b *Box) *css.Computed {
	for box := b; box != nil; box = box.Parent {
		if box.Style != nil {
			return box.Style
		}
		if box.Node != nil && box.Node.Kind == dom.ElementNode {
			return e.style(box.Node)
		}
	}
	return nil
}

func (f *inlineFlow) newLine() {
	y := f.block.Y
	if f.cur != nil {
		f.finishLine()
		y = f.cur.Y + f.cur.Height
	}
	f.cur = &LineBox{Y: y}
	f.curX = 0
	f.lines = append(f.lines, f.cur)
}

// finishLine fixes the line's height and applies text alignment.
func (f *inlineFlow) finishLine() {
	if f.cur == nil {
		return
	}
	if f.cur.Height == 0 {
		f.cur.Height = f.e.inheritedStyle(f.block).GetLineHeight()
	}
	switch f.e.inheritedStyle(f.block).GetTextAlign() {
	case css.TextAlignRight:
		f.shiftLine(f.block.Width - f.curX)
	case css.TextAlignCenter:
		f.shiftLine((f.block.Width - f.curX) / 2)
	}
}

func (f *inlineFlow) shiftLine(dx float64) {
	if dx <= 0 {
		return
	}
	for _, b := range f.cur.Boxes {
		b.X += dx
	}
}

func (f *inlineFlow) finish() {
	f.finishLine()
	// Drop a trailing empty line left by a forced break.
	if len(f.lines) > 1 && len(f.cur.Boxes) == 0 {
		f.lines = f.lines[:len(f.lines)-1]
	}
}

// place routes one inline-level box into the flow.
func (f *inlineFlow) place(b *Box, inherited *css.Computed) {
	switch b.Kind {
	case TextBox:
		f.placeText(b, inherited)
	case InlineBox:
		if b.Node != nil && b.Node.Tag == "br" {
			f.newLine()
			return
		}
		style := b.Style
		if style == nil {
			style = inherited
		}
		for _, child := range b.Children {
			f.place(child, style)
		}
	case ReplacedBox:
		f.placeReplaced(b)
	case BlockBox, AnonymousBox:
		// Block boxes never reach an inline flow; the builder wraps
		// mixed content in anonymous blocks first.
	}
}

// placeText breaks the text at whitespace and emits one fragment per
// line. The source box itself becomes the first fragment.
func (f *inlineFlow) placeText(b *Box, style *css.Computed) {
	fontSize := style.GetFontSize()
	bold := style.GetFontWeight() == css.FontWeightBold
	lineHeight := style.GetLineHeight()

	remaining := f.block.Width - f.curX
	first := text.FirstWord(b.Text)
	if f.curX > 0 {
		if w, _ := f.e.measurer.Measure(first, fontSize, bold); w > remaining {
			f.newLine()
			remaining = f.block.Width
		}
	}

	fragments := f.e.measurer.BreakLines(b.Text, fontSize, bold, remaining, f.block.Width)
	for i, frag := range fragments {
		if i > 0 {
			f.newLine()
		}
		w, _ := f.e.measurer.Measure(frag, fontSize, bold)
		box := b
		if i > 0 {
			box = &Box{Kind: TextBox, Node: b.Node, Parent: b.Parent}
		}
		box.Style = style
		box.Text = frag
		box.Width = w
		box.Height = lineHeight
		f.append(box, lineHeight)
		if i > 0 && b.Parent != nil {
			b.Parent.Children = append(b.Parent.Children, box)
		}
	}
}

func (f *inlineFlow) placeReplaced(b *Box) {
	b.Width, b.Height = 0, 0
	if f.e.media != nil && b.Node != nil {
		if w, h, ok := f.e.media(b.Node); ok {
			b.Width, b.Height = w, h
		}
	}
	if f.curX > 0 && f.curX+b.Width > f.block.Width {
		f.newLine()
	}
	h := b.Height
	if h == 0 {
		h = f.cur.Height
	}
	f.append(b, h)
}

// append puts a fragment at the cursor and advances it.
func (f *inlineFlow) append(b *Box, height float64) {
	b.X = f.block.X + f.curX
	b.Y = f.cur.Y
	f.curX += b.Width
	if height > f.cur.Height {
		f.cur.Height = height
	}
	f.cur.Boxes = append(f.cur.Boxes, b)
}

// setInlineBounds sizes an inline element box to the union of its
// descendant fragments.
func setInlineBounds(b *Box) {
	for _, c := range b.Children {
		if c.Kind == InlineBox {
			setInlineBounds(c)
		}
	}
	first := true
	var x0, y0, x1, y1 float64
	b.Walk(func(box *Box) {
		if box.Kind != TextBox && box.Kind != ReplacedBox {
			return
		}
		if first {
			x0, y0, x1, y1 = box.X, box.Y, box.X+box.Width, box.Y+box.Height
			first = false
			return
		}
		if box.X < x0 {
			x0 = box.X
		}
		if box.Y < y0 {
			y0 = box.Y
		}
		if box.X+box.Width > x1 {
			x1 = box.X + box.Width
		}
		if box.Y+box.Height > y1 {
			y1 = box.Y + box.Height
		}
	})
	if !first {
		b.X, b.Y, b.Width, b.Height = x0, y0, x1-x0, y1-y0
	}
}
