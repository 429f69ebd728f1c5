package wrapper

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

const (
	defaultPageHeight = 792.0 // US Letter, used when no MediaBox is found

	xTolerance = 3.0
	yTolerance = 3.0

	// The baseline sits at roughly 80% of the font height.
	baselineRatio = 0.8

	// Words closer than this fraction of the line height belong to one phrase.
	phraseGapRatio = 0.6
)

// glyph is a single visible character in top-left page coordinates
type glyph struct {
	Text string
	Box  extraction.BoundingBox
}

// glyphsFromText splits ledongthuc text runs into single characters and
// flips the y axis so that y grows downwards. Spaces only advance the pen.
func glyphsFromText(texts []pdf.Text, pageHeight float64) []glyph {
	var out []glyph
	for _, t := range texts {
		runes := []rune(t.S)
		if len(runes) == 0 {
			continue
		}

		height := t.FontSize
		if height <= 0 {
			height = 10
		}
		top := pageHeight - (t.Y + height*baselineRatio)
		width := t.W / float64(len(runes))
		x := t.X

		for _, r := range runes {
			if !unicode.IsSpace(r) {
				out = append(out, glyph{
					Text: string(r),
					Box:  extraction.BoundingBox{X0: x, Y0: top, X1: x + width, Y1: top + height},
				})
			}
			x += width
		}
	}
	return out
}

// groupLines sorts glyphs top to bottom, left to right and cuts them into
// lines whenever the top edge jumps by more than yTolerance.
func groupLines(glyphs []glyph) [][]glyph {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Box.Y0-sorted[j].Box.Y0) > yTolerance {
			return sorted[i].Box.Y0 < sorted[j].Box.Y0
		}
		return sorted[i].Box.X0 < sorted[j].Box.X0
	})

	var lines [][]glyph
	current := []glyph{sorted[0]}
	currentY := sorted[0].Box.Y0
	for _, g := range sorted[1:] {
		if math.Abs(g.Box.Y0-currentY) > yTolerance {
			lines = append(lines, current)
			current = []glyph{g}
			currentY = g.Box.Y0
			continue
		}
		current = append(current, g)
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].Box.X0 < line[j].Box.X0 })
	}
	return lines
}

// splitWords cuts a line of glyphs at horizontal gaps
func splitWords(line []glyph) []extraction.TextElement {
	if len(line) == 0 {
		return nil
	}

	var words []extraction.TextElement
	current := []glyph{line[0]}
	for i := 1; i < len(line); i++ {
		g := line[i]
		gap := g.Box.X0 - line[i-1].Box.X1
		if gap > xTolerance || gap > g.Box.Width()*0.3 {
			words = append(words, wordFrom(current))
			current = []glyph{g}
			continue
		}
		current = append(current, g)
	}
	return append(words, wordFrom(current))
}

func wordFrom(glyphs []glyph) extraction.TextElement {
	var sb strings.Builder
	box := glyphs[0].Box
	for _, g := range glyphs {
		sb.WriteString(g.Text)
		box = union(box, g.Box)
	}
	return extraction.TextElement{Text: sb.String(), Box: box}
}

// joinPhrases merges neighbouring words of one line into phrases such as
// "von Ort" or "1200m (Reserve)".
func joinPhrases(words []extraction.TextElement) []extraction.TextElement {
	if len(words) == 0 {
		return nil
	}

	var out []extraction.TextElement
	current := words[0]
	for _, w := range words[1:] {
		limit := math.Max(xTolerance, phraseGapRatio*math.Max(current.Box.Height(), w.Box.Height()))
		if w.Box.X0-current.Box.X1 <= limit {
			current = extraction.TextElement{
				Text: current.Text + " " + w.Text,
				Box:  union(current.Box, w.Box),
			}
			continue
		}
		out = append(out, current)
		current = w
	}
	return append(out, current)
}

// phraseLines returns the phrases of every line in reading order
func phraseLines(glyphs []glyph) [][]extraction.TextElement {
	lines := groupLines(glyphs)
	out := make([][]extraction.TextElement, 0, len(lines))
	for _, line := range lines {
		out = append(out, joinPhrases(splitWords(line)))
	}
	return out
}

func union(a, b extraction.BoundingBox) extraction.BoundingBox {
	return extraction.BoundingBox{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}
