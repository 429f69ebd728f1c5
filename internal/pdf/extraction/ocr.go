package extraction

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
)

// OCRStrategy is the last resort for pages without a text layer. It only
// knows line order: identifiers are paired with the next unclaimed type and
// length found within a few following lines.
type OCRStrategy struct {
	patterns  *Patterns
	dpi       float64
	lookahead int
	log       *logrus.Entry
}

// NewOCRStrategy creates the OCR line strategy
func NewOCRStrategy(p *Patterns, dpi float64, lookahead int) *OCRStrategy {
	return &OCRStrategy{patterns: p, dpi: dpi, lookahead: lookahead, log: logger.For(StrategyOCR)}
}

// Name implements Strategy
func (s *OCRStrategy) Name() string { return StrategyOCR }

// Extract implements Strategy
func (s *OCRStrategy) Extract(ctx context.Context, ws *Workspace) (*Result, error) {
	in := ws.Input()
	if in.Raster == nil || in.OCR == nil {
		s.log.Debug("no OCR backend, skipping")
		return nil, nil
	}

	res := &Result{Kind: KindSchematic}
	for page := 1; page <= ws.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(ws.Elements(page)) > 0 {
			s.log.WithField("page", page).Debug("page has a text layer, skipping")
			continue
		}
		lines, err := ws.RecognizePage(ctx, page, s.dpi)
		if err != nil {
			var ee *pdferrors.ExtractionError
			if errors.As(err, &ee) {
				ws.Record(ee)
			} else {
				ws.Record(pdferrors.NewBackendFailureError("ocr", page, err))
			}
			continue
		}
		records := s.ExtractLines(lines)
		s.log.WithFields(logrus.Fields{"page": page, "lines": len(lines), "records": len(records)}).Debug("page recognized")
		res.Records = append(res.Records, records...)
	}
	return res, nil
}

type lineToken struct {
	line  int
	start int
}

// ExtractLines pairs identifiers with the type and length tokens that follow
// them. Blank lines are ignored. A token is used by at most one identifier.
func (s *OCRStrategy) ExtractLines(raw []string) []CableRecord {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}

	claimedType := make(map[lineToken]bool)
	claimedLength := make(map[lineToken]bool)
	var records []CableRecord

	for i, line := range lines {
		for _, id := range s.patterns.Identifier.FindAllString(line, -1) {
			rec := CableRecord{Identifier: strings.TrimSpace(id)}
			last := min(i+s.lookahead, len(lines)-1)
			for j := i + 1; j <= last; j++ {
				if rec.Type == nil {
					if v, ok := claim(s.patterns.Type.FindAllStringIndex(lines[j], -1), lines[j], j, claimedType); ok {
						rec.Type = &v
					}
				}
				if rec.Length == nil {
					if v, ok := claim(s.patterns.LengthIndexes(lines[j]), lines[j], j, claimedLength); ok {
						v = StripParenthetical(v)
						rec.Length = &v
					}
				}
			}
			records = append(records, rec)
		}
	}
	return records
}

func claim(matches [][]int, line string, lineIdx int, claimed map[lineToken]bool) (string, bool) {
	for _, m := range matches {
		key := lineToken{line: lineIdx, start: m[0]}
		if claimed[key] {
			continue
		}
		claimed[key] = true
		return line[m[0]:m[1]], true
	}
	return "", false
}
