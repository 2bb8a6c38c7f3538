package paint

import (
	"image"
	"math"

	"github.com/sneedgroup-holder/wink-browser/pkg/css"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
	"github.com/sneedgroup-holder/wink-browser/pkg/layout"
)

// Op tags one display list entry.
type Op int

const (
	OpRect  Op = iota // filled rectangle
	OpText            // single-line text run
	OpImage           // decoded raster
)

// Item is one paint command. Colors are resolved at snapshot time so
// the compositor never touches computed styles.
type Item struct {
	Op    Op
	X, Y  float64
	W, H  float64
	Color css.Color

	// OpText
	Text     string
	FontSize float64
	Bold     bool

	// OpImage
	Image image.Image
}

// DisplayList is an immutable snapshot of one completed layout pass.
type DisplayList struct {
	Width  int
	Height int
	Items  []Item
}

// ImageSource resolves the decoded raster for a replaced element.
// Returning nil paints nothing for that element.
type ImageSource func(n *dom.Node) image.Image

// Snapshot flattens a positioned box tree into a display list.
// Ancestor backgrounds and borders precede descendants, so painting
// the items in order gives correct stacking for the block/inline
// model.
func Snapshot(root *layout.Box, images ImageSource) *DisplayList {
	list := &DisplayList{
		Width:  int(math.Ceil(root.Width)),
		Height: int(math.Ceil(root.Height)),
	}
	snapshotBox(list, root, images)
	return list
}

func snapshotBox(list *DisplayList, b *layout.Box, images ImageSource) {
	switch b.Kind {
	case layout.TextBox:
		if b.Text != "" {
			list.Items = append(list.Items, Item{
				Op:       OpText,
				X:        b.X,
				Y:        b.Y,
				W:        b.Width,
				H:        b.Height,
				Color:    b.Style.GetColor(),
				Text:     b.Text,
				FontSize: b.Style.GetFontSize(),
				Bold:     b.Style.GetFontWeight() == css.FontWeightBold,
			})
		}
		return
	case layout.ReplacedBox:
		if images != nil && b.Node != nil && b.Width > 0 && b.Height > 0 {
			if img := images(b.Node); img != nil {
				list.Items = append(list.Items, Item{
					Op: OpImage, X: b.X, Y: b.Y, W: b.Width, H: b.Height,
					Image: img,
				})
			}
		}
		return
	}

	if bg, ok := b.Style.GetBackgroundColor(); ok {
		// Background covers content plus padding.
		list.Items = append(list.Items, Item{
			Op:    OpRect,
			X:     b.X - b.Padding.Left,
			Y:     b.Y - b.Padding.Top,
			W:     b.Width + b.Padding.Left + b.Padding.Right,
			H:     b.Height + b.Padding.Top + b.Padding.Bottom,
			Color: bg,
		})
	}
	appendBorders(list, b)

	for _, child := range b.Children {
		snapshotBox(list, child, images)
	}
}

// appendBorders emits each border side as a filled rect spanning the
// border box edge.
func appendBorders(list *DisplayList, b *layout.Box) {
	if b.Border.Top <= 0 && b.Border.Right <= 0 && b.Border.Bottom <= 0 && b.Border.Left <= 0 {
		return
	}
	color := b.Style.GetBorderColor()
	x, y, w, h := b.BorderRect()
	if b.Border.Top > 0 {
		list.Items = append(list.Items, Item{Op: OpRect, X: x, Y: y, W: w, H: b.Border.Top, Color: color})
	}
	if b.Border.Bottom > 0 {
		list.Items = append(list.Items, Item{Op: OpRect, X: x, Y: y + h - b.Border.Bottom, W: w, H: b.Border.Bottom, Color: color})
	}
	if b.Border.Left > 0 {
		list.Items = append(list.Items, Item{Op: OpRect, X: x, Y: y, W: b.Border.Left, H: h, Color: color})
	}
	if b.Border.Right > 0 {
		list.Items = append(list.Items, Item{Op: OpRect, X: x + w - b.Border.Right, Y: y, W: b.Border.Right, H: h, Color: color})
	}
}
