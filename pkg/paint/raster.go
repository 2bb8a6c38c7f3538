package paint

import (
	"image"

	"github.com/fogleman/gg"
)

// Rasterizer draws display lists into RGBA images. Without configured
// font files it falls back to gg's built-in bitmap face, which is
// enough for the headless tools and for tests.
type Rasterizer struct {
	FontPath     string
	BoldFontPath string
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Rasterize paints the list onto a white canvas.
func (r *Rasterizer) Rasterize(list *DisplayList) *image.RGBA {
	w, h := list.Width, list.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, item := range list.Items {
		switch item.Op {
		case OpRect:
			dc.SetRGB255(int(item.Color.R), int(item.Color.G), int(item.Color.B))
			dc.DrawRectangle(item.X, item.Y, item.W, item.H)
			dc.Fill()
		case OpText:
			r.loadFace(dc, item.FontSize, item.Bold)
			dc.SetRGB255(int(item.Color.R), int(item.Color.G), int(item.Color.B))
			// Anchor at the fragment's baseline, approximated at 80%
			// of the line height.
			dc.DrawString(item.Text, item.X, item.Y+item.H*0.8)
		case OpImage:
			if item.Image != nil {
				dc.DrawImage(item.Image, int(item.X), int(item.Y))
			}
		}
	}

	return dc.Image().(*image.RGBA)
}

func (r *Rasterizer) loadFace(dc *gg.Context, size float64, bold bool) {
	path := r.FontPath
	if bold && r.BoldFontPath != "" {
		path = r.BoldFontPath
	}
	if path == "" {
		return
	}
	// Ignore load failures and keep the current face.
	_ = dc.LoadFontFace(path, size)
}
