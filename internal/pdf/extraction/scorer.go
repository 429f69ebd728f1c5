package extraction

import (
	"fmt"
	"strings"

	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
)

// Acceptance thresholds for header rows
const (
	RowHeaderThreshold    = 10
	TwoRowHeaderThreshold = 6
	MinPopulatedFields    = 6
)

// HeaderCandidate identifies a scored header row within a document
type HeaderCandidate struct {
	Table  int // position in the document's table list
	Row    int
	Score  int
	Labels []string
}

// FindBestHeaderRow scores every row of every table and returns the single
// best row across the whole document. Earlier rows win ties.
func FindBestHeaderRow(r *Resolver, tables []RawTable) (HeaderCandidate, bool) {
	best := HeaderCandidate{Score: -1}
	for ti, t := range tables {
		for ri, row := range t.Rows {
			if score := r.ScoreRow(row); score > best.Score {
				best = HeaderCandidate{Table: ti, Row: ri, Score: score, Labels: row}
			}
		}
	}
	return best, best.Score >= 0
}

// FindBestTwoRowHeader joins each pair of adjacent rows cell by cell and
// returns the best combined header across the document.
func FindBestTwoRowHeader(r *Resolver, tables []RawTable) (HeaderCandidate, bool) {
	best := HeaderCandidate{Score: -1}
	for ti, t := range tables {
		for ri := 0; ri+1 < len(t.Rows); ri++ {
			combined := CombineRows(t.Rows[ri], t.Rows[ri+1])
			if score := r.ScoreRow(combined); score > best.Score {
				best = HeaderCandidate{Table: ti, Row: ri, Score: score, Labels: combined}
			}
		}
	}
	return best, best.Score >= 0
}

// CombineRows space-joins same-indexed cells of two rows after trimming each
func CombineRows(upper, lower []string) []string {
	n := max(len(upper), len(lower))
	out := make([]string, n)
	for i := range n {
		var parts []string
		if i < len(upper) {
			if s := strings.TrimSpace(upper[i]); s != "" {
				parts = append(parts, s)
			}
		}
		if i < len(lower) {
			if s := strings.TrimSpace(lower[i]); s != "" {
				parts = append(parts, s)
			}
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}

// MakeUnique keeps the first occurrence of a label and suffixes later
// duplicates with _1, _2 and so on. Suffixes already used by another label
// are skipped.
func MakeUnique(labels []string) []string {
	taken := make(map[string]bool, len(labels))
	for _, l := range labels {
		taken[l] = true
	}
	next := make(map[string]int, len(labels))
	seen := make(map[string]bool, len(labels))
	out := make([]string, len(labels))
	for i, l := range labels {
		if !seen[l] {
			seen[l] = true
			out[i] = l
			continue
		}
		for {
			next[l]++
			candidate := fmt.Sprintf("%s_%d", l, next[l])
			if !taken[candidate] {
				taken[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// buildTable turns a header and its data rows into a ResolvedTable. Every data
// row must have exactly as many cells as the header.
func buildTable(strategy string, src RawTable, header []string, rows [][]string) (*ResolvedTable, error) {
	labels := make([]string, len(header))
	for i, h := range header {
		labels[i] = strings.TrimSpace(h)
	}
	labels = MakeUnique(labels)

	cols := make([]Column, len(labels))
	for i, l := range labels {
		cols[i] = Column{Label: l, Values: make([]string, 0, len(rows))}
	}
	for ri, row := range rows {
		if len(row) != len(labels) {
			return nil, pdferrors.NewMalformedTableError(strategy, src.Page, src.Index,
				fmt.Sprintf("row %d has %d cells, header has %d", ri, len(row), len(labels)))
		}
		for ci, cell := range row {
			cols[ci].Values = append(cols[ci].Values, strings.TrimSpace(cell))
		}
	}
	return &ResolvedTable{Page: src.Page, Index: src.Index, Columns: cols}, nil
}
