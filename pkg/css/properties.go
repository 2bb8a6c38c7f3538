package css

import (
	"strconv"
	"strings"
)

// expandShorthand appends property declarations to out, expanding the
// margin/padding/border shorthands into their longhand parts so the
// cascade only ever sees longhands.
func expandShorthand(out []Declaration, property, value string, important bool) []Declaration {
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)
	if property == "" || value == "" {
		return out
	}
	add := func(p, v string) []Declaration {
		return append(out, Declaration{Property: p, Value: v, Important: important})
	}
	switch property {
	case "margin", "padding":
		top, right, bottom, left, ok := splitBoxShorthand(value)
		if !ok {
			return out
		}
		out = add(property+"-top", top)
		out = append(out, Declaration{Property: property + "-right", Value: right, Important: important})
		out = append(out, Declaration{Property: property + "-bottom", Value: bottom, Important: important})
		out = append(out, Declaration{Property: property + "-left", Value: left, Important: important})
		return out
	case "border":
		// "1px solid red" in any order
		for _, part := range strings.Fields(value) {
			switch {
			case strings.HasSuffix(part, "px"):
				for _, side := range []string{"top", "right", "bottom", "left"} {
					out = append(out, Declaration{Property: "border-" + side + "-width", Value: part, Important: important})
				}
			case part == "solid" || part == "dotted" || part == "dashed" || part == "double" || part == "none":
				out = append(out, Declaration{Property: "border-style", Value: part, Important: important})
			default:
				out = append(out, Declaration{Property: "border-color", Value: part, Important: important})
			}
		}
		return out
	}
	return add(property, value)
}

// splitBoxShorthand applies the 1/2/3/4-value expansion used by the
// margin and padding shorthands.
func splitBoxShorthand(value string) (top, right, bottom, left string, ok bool) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 1:
		return parts[0], parts[0], parts[0], parts[0], true
	case 2:
		return parts[0], parts[1], parts[0], parts[1], true
	case 3:
		return parts[0], parts[1], parts[2], parts[1], true
	case 4:
		return parts[0], parts[1], parts[2], parts[3], true
	}
	return "", "", "", "", false
}

// inheritedProperties flow from parent to child when a node has no
// declaration of its own.
var inheritedProperties = map[string]bool{
	"color":           true,
	"font-size":       true,
	"font-weight":     true,
	"font-style":      true,
	"font-family":     true,
	"line-height":     true,
	"text-align":      true,
	"visibility":      true,
	"white-space":     true,
	"list-style-type": true,
}

// initialValues for the non-inherited properties the engine consults.
// Properties absent here default through the typed getters.
var initialValues = map[string]string{
	"display": "block",
}

// ParseLength parses a pixel length ("12px" or a bare number).
func ParseLength(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "px")
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Color is an opaque sRGB color.
type Color struct {
	R, G, B uint8
}

var namedColors = map[string]Color{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 192, 203},
	"brown":   {165, 42, 42},
	"lime":    {0, 255, 0},
	"navy":    {0, 0, 128},
	"teal":    {0, 128, 128},
	"maroon":  {128, 0, 0},
	"olive":   {128, 128, 0},
}

// ParseColor accepts named colors, #rgb, and #rrggbb.
func ParseColor(value string) (Color, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[value]; ok {
		return c, true
	}
	if !strings.HasPrefix(value, "#") {
		return Color{}, false
	}
	hex := value[1:]
	switch len(hex) {
	case 3:
		r, okR := hexNibble(hex[0])
		g, okG := hexNibble(hex[1])
		b, okB := hexNibble(hex[2])
		if okR && okG && okB {
			return Color{r * 17, g * 17, b * 17}, true
		}
	case 6:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return Color{uint8(n >> 16), uint8(n >> 8), uint8(n)}, true
		}
	}
	return Color{}, false
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

// BoxEdge holds per-side lengths for margin, border, or padding.
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DisplayType is the element's outer display role.
type DisplayType string

const (
	DisplayBlock  DisplayType = "block"
	DisplayInline DisplayType = "inline"
	DisplayNone   DisplayType = "none"
)

// FontWeight distinguishes the two weights the renderer draws.
type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

// TextAlign is the horizontal alignment of inline content.
type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

const DefaultFontSize = 16.0

// GetDisplay returns the display value (default: block).
func (c *Computed) GetDisplay() DisplayType {
	switch c.Get("display") {
	case "inline", "inline-block":
		return DisplayInline
	case "none":
		return DisplayNone
	}
	return DisplayBlock
}

// GetMargin returns the margin for all four sides.
func (c *Computed) GetMargin() BoxEdge {
	return c.edge("margin")
}

// GetPadding returns the padding for all four sides.
func (c *Computed) GetPadding() BoxEdge {
	return c.edge("padding")
}

// GetBorderWidth returns the border width for all four sides.
func (c *Computed) GetBorderWidth() BoxEdge {
	return BoxEdge{
		Top:    c.lengthOrZero("border-top-width"),
		Right:  c.lengthOrZero("border-right-width"),
		Bottom: c.lengthOrZero("border-bottom-width"),
		Left:   c.lengthOrZero("border-left-width"),
	}
}

func (c *Computed) edge(prefix string) BoxEdge {
	return BoxEdge{
		Top:    c.lengthOrZero(prefix + "-top"),
		Right:  c.lengthOrZero(prefix + "-right"),
		Bottom: c.lengthOrZero(prefix + "-bottom"),
		Left:   c.lengthOrZero(prefix + "-left"),
	}
}

func (c *Computed) lengthOrZero(property string) float64 {
	if v, ok := ParseLength(c.Get(property)); ok {
		return v
	}
	return 0
}

// GetLength returns property as a pixel length.
func (c *Computed) GetLength(property string) (float64, bool) {
	return ParseLength(c.Get(property))
}

// GetFontSize returns the font size in pixels (default: 16).
func (c *Computed) GetFontSize() float64 {
	if v, ok := ParseLength(c.Get("font-size")); ok && v > 0 {
		return v
	}
	return DefaultFontSize
}

// GetLineHeight returns the line height in pixels
// (default: 1.2 times the font size).
func (c *Computed) GetLineHeight() float64 {
	if v, ok := ParseLength(c.Get("line-height")); ok && v > 0 {
		return v
	}
	return c.GetFontSize() * 1.2
}

// GetColor returns the text color (default: black).
func (c *Computed) GetColor() Color {
	if col, ok := ParseColor(c.Get("color")); ok {
		return col
	}
	return Color{0, 0, 0}
}

// GetBackgroundColor returns the background color if one is set.
func (c *Computed) GetBackgroundColor() (Color, bool) {
	return ParseColor(c.Get("background-color"))
}

// GetBorderColor returns the border color (default: the text color).
func (c *Computed) GetBorderColor() Color {
	if col, ok := ParseColor(c.Get("border-color")); ok {
		return col
	}
	return c.GetColor()
}

// GetFontWeight returns the font weight (default: normal).
func (c *Computed) GetFontWeight() FontWeight {
	switch c.Get("font-weight") {
	case "bold", "600", "700", "800", "900":
		return FontWeightBold
	}
	return FontWeightNormal
}

// GetTextAlign returns the text alignment (default: left).
func (c *Computed) GetTextAlign() TextAlign {
	switch c.Get("text-align") {
	case "center":
		return TextAlignCenter
	case "right":
		return TextAlignRight
	}
	return TextAlignLeft
}
