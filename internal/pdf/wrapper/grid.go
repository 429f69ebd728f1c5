package wrapper

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

const (
	snapTolerance   = 3.0
	columnTolerance = 6.0
	minTableRows    = 2
)

// rulings holds the snapped y positions of horizontal rules and the x
// positions of vertical rules on one page.
type rulings struct {
	Rows []float64
	Cols []float64
}

// rulingsFromRects turns drawn rectangles into rule positions. Thin
// rectangles are lines, anything larger contributes its four edges.
func rulingsFromRects(rects []pdf.Rect, pageHeight float64) rulings {
	var hs, vs []float64
	for _, r := range rects {
		box := extraction.BoundingBox{
			X0: math.Min(r.Min.X, r.Max.X),
			X1: math.Max(r.Min.X, r.Max.X),
			Y0: pageHeight - math.Max(r.Min.Y, r.Max.Y),
			Y1: pageHeight - math.Min(r.Min.Y, r.Max.Y),
		}
		switch {
		case box.Height() < snapTolerance && box.Width() < snapTolerance:
			continue
		case box.Height() < snapTolerance:
			hs = append(hs, box.CenterY())
		case box.Width() < snapTolerance:
			vs = append(vs, box.CenterX())
		default:
			hs = append(hs, box.Y0, box.Y1)
			vs = append(vs, box.X0, box.X1)
		}
	}
	return rulings{Rows: uniquePositions(hs), Cols: uniquePositions(vs)}
}

// uniquePositions sorts positions and collapses those within snapTolerance
func uniquePositions(pos []float64) []float64 {
	if len(pos) == 0 {
		return nil
	}
	sorted := append([]float64(nil), pos...)
	sort.Float64s(sorted)

	out := []float64{sorted[0]}
	for _, p := range sorted[1:] {
		if p-out[len(out)-1] > snapTolerance {
			out = append(out, p)
		}
	}
	return out
}

// ruledGrid assigns every glyph to the cell containing its centre. Rows with
// no text at all are dropped.
func ruledGrid(r rulings, glyphs []glyph) [][]string {
	if len(r.Rows) < 2 || len(r.Cols) < 2 {
		return nil
	}

	cells := make([][][]glyph, len(r.Rows)-1)
	for i := range cells {
		cells[i] = make([][]glyph, len(r.Cols)-1)
	}
	for _, g := range glyphs {
		row := band(r.Rows, g.Box.CenterY())
		col := band(r.Cols, g.Box.CenterX())
		if row < 0 || col < 0 {
			continue
		}
		cells[row][col] = append(cells[row][col], g)
	}

	var rows [][]string
	for _, cellRow := range cells {
		out := make([]string, len(cellRow))
		empty := true
		for j, cell := range cellRow {
			out[j] = cellText(cell)
			if out[j] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, out)
		}
	}
	if len(rows) < minTableRows {
		return nil
	}
	return rows
}

// band returns i such that edges[i] <= v < edges[i+1], or -1
func band(edges []float64, v float64) int {
	i := sort.SearchFloat64s(edges, v)
	if i < len(edges) && edges[i] == v {
		i++
	}
	i--
	if i < 0 || i >= len(edges)-1 {
		return -1
	}
	return i
}

// cellText reads the glyphs of one cell line by line
func cellText(glyphs []glyph) string {
	var parts []string
	for _, line := range groupLines(glyphs) {
		for _, w := range splitWords(line) {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

// alignedGrid builds a table from text alone: phrase start positions shared
// by at least half of the lines become column anchors.
func alignedGrid(lines [][]extraction.TextElement) [][]string {
	if len(lines) < minTableRows {
		return nil
	}

	anchors := columnAnchors(lines)
	if len(anchors) < 2 {
		return nil
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		row := make([]string, len(anchors))
		for _, phrase := range line {
			col := 0
			for j, a := range anchors {
				if a <= phrase.Box.X0+columnTolerance {
					col = j
				}
			}
			if row[col] != "" {
				row[col] += " "
			}
			row[col] += phrase.Text
		}
		rows = append(rows, row)
	}
	return rows
}

type anchor struct {
	x     float64
	lines map[int]struct{}
}

func columnAnchors(lines [][]extraction.TextElement) []float64 {
	type start struct {
		x    float64
		line int
	}
	var starts []start
	for i, line := range lines {
		for _, p := range line {
			starts = append(starts, start{x: p.Box.X0, line: i})
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].x < starts[j].x })

	var clusters []*anchor
	for _, s := range starts {
		if n := len(clusters); n > 0 && s.x-clusters[n-1].x <= columnTolerance {
			clusters[n-1].lines[s.line] = struct{}{}
			continue
		}
		clusters = append(clusters, &anchor{x: s.x, lines: map[int]struct{}{s.line: {}}})
	}

	minLines := max(minTableRows, (len(lines)+1)/2)
	var out []float64
	for _, c := range clusters {
		if len(c.lines) >= minLines {
			out = append(out, c.x)
		}
	}
	return out
}
