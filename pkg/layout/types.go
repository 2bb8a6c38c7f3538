package layout

import (
	"github.com/sneedgroup-holder/wink-browser/pkg/css"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

// BoxKind classifies the boxes the engine generates.
type BoxKind int

const (
	BlockBox     BoxKind = iota
	InlineBox            // inline element, bounds cover its fragments
	AnonymousBox         // wrapper around an inline run inside a mixed block
	TextBox              // one line fragment of a text node
	ReplacedBox          // image or other replaced content
)

// Box is one node of the box tree. X/Y/Width/Height describe the
// content rect in document coordinates; margin, border, and padding
// lie outside it.
type Box struct {
	Kind    BoxKind
	Node    *dom.Node     // nil for anonymous boxes
	Style   *css.Computed // nil falls back to initial values
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Margin  css.BoxEdge
	Border  css.BoxEdge
	Padding css.BoxEdge

	Children []*Box
	Parent   *Box

	// Lines holds the line boxes of a block container whose content
	// is inline. The fragments they reference also appear under
	// Children (inside their inline element boxes) when they belong
	// to one.
	Lines []*LineBox

	Text string // TextBox: the fragment's text
}

// LineBox is one line of inline content inside a block container.
type LineBox struct {
	Y      float64
	Height float64
	Boxes  []*Box // text fragments and replaced boxes, left to right
}

// OuterWidth is the horizontal extent including padding, border, and
// margin.
func (b *Box) OuterWidth() float64 {
	return b.Margin.Left + b.Border.Left + b.Padding.Left + b.Width +
		b.Padding.Right + b.Border.Right + b.Margin.Right
}

// OuterHeight is the vertical extent including padding, border, and
// margin.
func (b *Box) OuterHeight() float64 {
	return b.Margin.Top + b.Border.Top + b.Padding.Top + b.Height +
		b.Padding.Bottom + b.Border.Bottom + b.Margin.Bottom
}

// BorderRect returns the border-edge rectangle of the box.
func (b *Box) BorderRect() (x, y, w, h float64) {
	x = b.X - b.Padding.Left - b.Border.Left
	y = b.Y - b.Padding.Top - b.Border.Top
	w = b.Border.Left + b.Padding.Left + b.Width + b.Padding.Right + b.Border.Right
	h = b.Border.Top + b.Padding.Top + b.Height + b.Padding.Bottom + b.Border.Bottom
	return
}

// Walk visits the box and all descendants depth first.
func (b *Box) Walk(fn func(*Box)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// FindByNode returns the first box generated for n, or nil.
func (b *Box) FindByNode(n *dom.Node) *Box {
	var found *Box
	b.Walk(func(box *Box) {
		if found == nil && box.Node == n {
			found = box
		}
	})
	return found
}
