package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
)

// Strategy names
const (
	StrategyRowHeader      = "row-header"
	StrategyColumnFallback = "column-fallback"
	StrategyTwoRowHeader   = "two-row-header"
	StrategyPosition       = "position"
	StrategyOCR            = "ocr-lines"
)

// RowHeaderStrategy uses the best-scoring row of the document as header
type RowHeaderStrategy struct {
	resolver  *Resolver
	threshold int
	log       *logrus.Entry
}

// NewRowHeaderStrategy creates the primary tabular strategy
func NewRowHeaderStrategy(r *Resolver) *RowHeaderStrategy {
	return &RowHeaderStrategy{resolver: r, threshold: RowHeaderThreshold, log: logger.For(StrategyRowHeader)}
}

// Name implements Strategy
func (s *RowHeaderStrategy) Name() string { return StrategyRowHeader }

// Extract implements Strategy
func (s *RowHeaderStrategy) Extract(ctx context.Context, ws *Workspace) (*Result, error) {
	tables := ws.Tables(ctx)
	best, ok := FindBestHeaderRow(s.resolver, tables)
	if !ok {
		return nil, ctx.Err()
	}
	s.log.WithFields(logrus.Fields{
		"page":  tables[best.Table].Page,
		"row":   best.Row,
		"score": best.Score,
	}).Debug("best header row")

	if best.Score < s.threshold {
		return nil, ctx.Err()
	}

	src := tables[best.Table]
	table, err := buildTable(s.Name(), src, src.Rows[best.Row], src.Rows[best.Row+1:])
	if err != nil {
		recordMalformed(ws, err)
		return nil, ctx.Err()
	}
	return tabularResult(s.resolver, table), ctx.Err()
}

// ColumnFallbackStrategy looks for a header cell in every column on its own.
// Useful when headers are staggered or the table has no single header row.
type ColumnFallbackStrategy struct {
	resolver  *Resolver
	minFields int
	log       *logrus.Entry
}

// NewColumnFallbackStrategy creates the column-oriented fallback
func NewColumnFallbackStrategy(r *Resolver) *ColumnFallbackStrategy {
	return &ColumnFallbackStrategy{resolver: r, minFields: MinPopulatedFields, log: logger.For(StrategyColumnFallback)}
}

// Name implements Strategy
func (s *ColumnFallbackStrategy) Name() string { return StrategyColumnFallback }

// Extract implements Strategy
func (s *ColumnFallbackStrategy) Extract(ctx context.Context, ws *Workspace) (*Result, error) {
	var accepted []*ResolvedTable
	for _, t := range ws.Tables(ctx) {
		if rt := s.resolveColumns(t); rt != nil {
			accepted = append(accepted, rt)
		}
	}
	if len(accepted) == 0 {
		return nil, ctx.Err()
	}
	s.log.WithField("tables", len(accepted)).Debug("tables accepted")
	return tabularResult(s.resolver, accepted...), ctx.Err()
}

type slicedColumn struct {
	label string
	data  []string
}

// resolveColumns returns nil when no row survives the population filter
func (s *ColumnFallbackStrategy) resolveColumns(t RawTable) *ResolvedTable {
	width := 0
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}

	cols := make([]slicedColumn, width)
	for j := range width {
		cells := make([]string, len(t.Rows))
		for i, row := range t.Rows {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		cols[j] = s.sliceColumn(j, cells)
	}

	depth := 0
	for _, c := range cols {
		depth = max(depth, len(c.data))
	}

	// Rows are reassembled by index below each column's own header, so
	// columns whose headers sit on different rows shift against each other.
	var keep []int
	for i := range depth {
		filled := 0
		for _, c := range cols {
			if i < len(c.data) && strings.TrimSpace(c.data[i]) != "" {
				filled++
			}
		}
		if filled >= s.minFields {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil
	}

	labels := make([]string, width)
	for j, c := range cols {
		labels[j] = c.label
	}
	labels = MakeUnique(labels)

	out := &ResolvedTable{Page: t.Page, Index: t.Index, Columns: make([]Column, width)}
	for j, c := range cols {
		values := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(c.data) {
				values = append(values, strings.TrimSpace(c.data[i]))
			}
		}
		out.Columns[j] = Column{Label: labels[j], Values: values}
	}
	return out
}

// sliceColumn finds the header cell of one column: the first literal match
// from the top, otherwise the first approximate match. Unmatched columns keep
// their first cell as label.
func (s *ColumnFallbackStrategy) sliceColumn(j int, cells []string) slicedColumn {
	at := -1
	for i, c := range cells {
		if _, ok := s.resolver.ResolveExact(c); ok {
			at = i
			break
		}
	}
	if at < 0 {
		for i, c := range cells {
			if _, ok := s.resolver.Resolve(c); ok {
				at = i
				break
			}
		}
	}
	if at >= 0 {
		return slicedColumn{label: strings.TrimSpace(cells[at]), data: cells[at+1:]}
	}

	label := strings.TrimSpace(cells[0])
	if label == "" {
		label = fmt.Sprintf("Spalte_%d", j+1)
	}
	return slicedColumn{label: label, data: cells[1:]}
}

// TwoRowHeaderStrategy handles headers that wrap over two rows
type TwoRowHeaderStrategy struct {
	resolver  *Resolver
	threshold int
	log       *logrus.Entry
}

// NewTwoRowHeaderStrategy creates the composite-header fallback
func NewTwoRowHeaderStrategy(r *Resolver) *TwoRowHeaderStrategy {
	return &TwoRowHeaderStrategy{resolver: r, threshold: TwoRowHeaderThreshold, log: logger.For(StrategyTwoRowHeader)}
}

// Name implements Strategy
func (s *TwoRowHeaderStrategy) Name() string { return StrategyTwoRowHeader }

// Extract implements Strategy
func (s *TwoRowHeaderStrategy) Extract(ctx context.Context, ws *Workspace) (*Result, error) {
	tables := ws.Tables(ctx)
	best, ok := FindBestTwoRowHeader(s.resolver, tables)
	if !ok || best.Score < s.threshold {
		return nil, ctx.Err()
	}
	s.log.WithFields(logrus.Fields{"row": best.Row, "score": best.Score}).Debug("combined header accepted")

	src := tables[best.Table]
	table, err := buildTable(s.Name(), src, best.Labels, src.Rows[best.Row+2:])
	if err != nil {
		recordMalformed(ws, err)
		return nil, ctx.Err()
	}
	return tabularResult(s.resolver, table), ctx.Err()
}

func tabularResult(r *Resolver, tables ...*ResolvedTable) *Result {
	return &Result{Kind: KindTabular, Fields: MergeFields(r, tables)}
}

func recordMalformed(ws *Workspace, err error) {
	var ee *pdferrors.ExtractionError
	if errors.As(err, &ee) {
		ws.Record(ee)
		return
	}
	ws.Record(pdferrors.NewMalformedTableError("", 0, 0, err.Error()))
}
