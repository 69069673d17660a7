package layout

import "strings"

// Face names a font family and style ("", "B", "I", "BI").
type Face struct {
	Family string `yaml:"family"`
	Style  string `yaml:"style"`
}

// Measurer reports the rendered width of text in points.
type Measurer interface {
	Width(text string, face Face, size float64) float64
}

// Wrap breaks text into physical lines no wider than maxWidth, greedily
// filling each line word by word. A word wider than maxWidth on its own is
// split between runes. Whitespace-only text yields no lines.
func Wrap(m Measurer, text string, face Face, size, maxWidth float64) []string {
	words := strings.Fields(text)
	var lines []string
	cur := ""
	for _, w := range words {
		if cur != "" {
			if cand := cur + " " + w; m.Width(cand, face, size) <= maxWidth {
				cur = cand
				continue
			}
			lines = append(lines, cur)
			cur = ""
		}
		if m.Width(w, face, size) <= maxWidth {
			cur = w
			continue
		}
		parts := hardSplit(m, w, face, size, maxWidth)
		lines = append(lines, parts[:len(parts)-1]...)
		cur = parts[len(parts)-1]
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// hardSplit cuts a single token into pieces that each fit maxWidth. A rune
// wider than maxWidth still gets a piece of its own.
func hardSplit(m Measurer, w string, face Face, size, maxWidth float64) []string {
	var parts []string
	var cur []rune
	for _, r := range w {
		if len(cur) > 0 && m.Width(string(append(cur, r)), face, size) > maxWidth {
			parts = append(parts, string(cur))
			cur = cur[:0:0]
		}
		cur = append(cur, r)
	}
	return append(parts, string(cur))
}
