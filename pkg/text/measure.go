package text

import (
	"strings"

	"github.com/fogleman/gg"
)

// Measurer reports the rendered size of text runs. When font files are
// configured it measures through gg's font metrics; without fonts (or
// when loading fails) it falls back to a fixed-advance estimate, which
// keeps layout deterministic on machines with no fonts installed.
type Measurer struct {
	RegularPath string
	BoldPath    string
}

// NewMeasurer returns a Measurer using estimated metrics only.
func NewMeasurer() *Measurer {
	return &Measurer{}
}

// estimated advance per character, as a fraction of the font size
const estimatedAdvance = 0.6

// Measure returns the width and height of a single-line text run.
func (m *Measurer) Measure(text string, fontSize float64, bold bool) (width, height float64) {
	path := m.fontPath(bold)
	if path != "" {
		dc := gg.NewContext(1, 1)
		if err := dc.LoadFontFace(path, fontSize); err == nil {
			w, h := dc.MeasureString(text)
			return w, h
		}
	}
	return float64(len(text)) * fontSize * estimatedAdvance, fontSize * 1.2
}

func (m *Measurer) fontPath(bold bool) string {
	if bold && m.BoldPath != "" {
		return m.BoldPath
	}
	return m.RegularPath
}

// BreakLines splits text into lines by greedy breaking at whitespace.
// The first line fits within firstMax, later lines within restMax;
// restMax matters when the text starts partway through a line, after
// an inline sibling. A word wider than the limit gets a line of its
// own rather than being split.
func (m *Measurer) BreakLines(text string, fontSize float64, bold bool, firstMax, restMax float64) []string {
	if w, _ := m.Measure(text, fontSize, bold); w <= firstMax {
		return []string{text}
	}

	words := Words(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := current
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		max := restMax
		if len(lines) == 0 {
			max = firstMax
		}
		if w, _ := m.Measure(candidate, fontSize, bold); w <= max {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}

// Words splits text at whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// FirstWord returns the first whitespace-delimited word, or "".
func FirstWord(text string) string {
	words := Words(text)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}
