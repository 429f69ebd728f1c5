package extraction

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/rtree"

	"github.com/a3tai/mcp-cable-extractor/internal/logger"
)

// TypePlacement says where the type label sits relative to its anchor
type TypePlacement int

const (
	TypeBelow TypePlacement = iota
	TypeAbove
)

// LengthPlacement says how the length token is found
type LengthPlacement int

const (
	LengthRight LengthPlacement = iota
	LengthNearest
)

// Layout names a combination of placements used by a drawing family
type Layout string

const (
	LayoutBelowRight   Layout = "below-right"
	LayoutAboveNearest Layout = "above-nearest"
)

// Geometry holds the spatial search windows, in PDF points
type Geometry struct {
	Type   TypePlacement
	Length LengthPlacement

	BelowTolerance float64 // max horizontal center offset for a type label below
	AboveTolerance float64 // max horizontal center offset for a type label above
	MaxVerticalGap float64 // max gap between anchor and type label
	RowTolerance   float64 // max vertical center offset for a length to the right
	MaxRightGap    float64 // max gap between anchor and a length to the right
	MaxDistance    float64 // cutoff for the nearest length token
}

// GeometryFor returns the default windows for a layout
func GeometryFor(layout Layout) (Geometry, error) {
	g := Geometry{
		BelowTolerance: 30,
		AboveTolerance: 15,
		MaxVerticalGap: 40,
		RowTolerance:   8,
		MaxRightGap:    250,
		MaxDistance:    150,
	}
	switch layout {
	case "", LayoutBelowRight:
		g.Type, g.Length = TypeBelow, LengthRight
	case LayoutAboveNearest:
		g.Type, g.Length = TypeAbove, LengthNearest
	default:
		return g, fmt.Errorf("unknown layout %q (must be %s or %s)", layout, LayoutBelowRight, LayoutAboveNearest)
	}
	return g, nil
}

// PositionStrategy reads schematic pages: every identifier token becomes a
// record, with type and length taken from nearby tokens.
type PositionStrategy struct {
	patterns *Patterns
	geometry Geometry
	log      *logrus.Entry
}

// NewPositionStrategy creates the position-based strategy
func NewPositionStrategy(p *Patterns, g Geometry) *PositionStrategy {
	return &PositionStrategy{patterns: p, geometry: g, log: logger.For(StrategyPosition)}
}

// Name implements Strategy
func (s *PositionStrategy) Name() string { return StrategyPosition }

// Extract implements Strategy
func (s *PositionStrategy) Extract(ctx context.Context, ws *Workspace) (*Result, error) {
	res := &Result{Kind: KindSchematic}
	for page := 1; page <= ws.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records := s.ExtractPage(ws.Elements(page))
		if len(records) > 0 {
			s.log.WithFields(logrus.Fields{"page": page, "records": len(records)}).Debug("anchors found")
		}
		res.Records = append(res.Records, records...)
	}
	return res, nil
}

// ExtractPage returns one record per anchor on the page, in reading order
func (s *PositionStrategy) ExtractPage(elements []TextElement) []CableRecord {
	var tr rtree.RTreeG[int]
	var anchors []int
	for i, el := range elements {
		tr.Insert([2]float64{el.Box.X0, el.Box.Y0}, [2]float64{el.Box.X1, el.Box.Y1}, i)
		if s.patterns.Identifier.MatchString(el.Text) {
			anchors = append(anchors, i)
		}
	}

	anchors = s.readingOrder(elements, anchors)

	records := make([]CableRecord, 0, len(anchors))
	for _, ai := range anchors {
		anchor := elements[ai]
		rec := CableRecord{Identifier: strings.TrimSpace(s.patterns.Identifier.FindString(anchor.Text))}
		if v, ok := s.findType(&tr, elements, ai); ok {
			rec.Type = &v
		}
		if v, ok := s.findLength(&tr, elements, ai); ok {
			rec.Length = &v
		}
		records = append(records, rec)
	}
	return records
}

// readingOrder sorts anchors top to bottom, then left to right within a row.
// A row starts at its topmost anchor and takes every anchor whose Y0 lies
// within RowTolerance of it.
func (s *PositionStrategy) readingOrder(elements []TextElement, anchors []int) []int {
	sort.SliceStable(anchors, func(a, b int) bool {
		ba, bb := elements[anchors[a]].Box, elements[anchors[b]].Box
		if ba.Y0 != bb.Y0 {
			return ba.Y0 < bb.Y0
		}
		return ba.X0 < bb.X0
	})

	rows := make(map[int]int, len(anchors))
	row, top := -1, 0.0
	for _, ai := range anchors {
		y := elements[ai].Box.Y0
		if row < 0 || y-top > s.geometry.RowTolerance {
			row++
			top = y
		}
		rows[ai] = row
	}

	sort.SliceStable(anchors, func(a, b int) bool {
		ra, rb := rows[anchors[a]], rows[anchors[b]]
		if ra != rb {
			return ra < rb
		}
		return elements[anchors[a]].Box.X0 < elements[anchors[b]].Box.X0
	})
	return anchors
}

type spatialHit struct {
	value string
	dist  float64
}

func (h *spatialHit) offer(value string, dist float64) {
	if h.value == "" || dist < h.dist {
		h.value, h.dist = value, dist
	}
}

func (s *PositionStrategy) findType(tr *rtree.RTreeG[int], elements []TextElement, ai int) (string, bool) {
	a := elements[ai].Box
	g := s.geometry
	var hit spatialHit

	var lo, hi [2]float64
	tol := g.BelowTolerance
	if g.Type == TypeAbove {
		tol = g.AboveTolerance
		lo = [2]float64{a.CenterX() - tol, a.Y0 - g.MaxVerticalGap}
		hi = [2]float64{a.CenterX() + tol, a.Y0}
	} else {
		lo = [2]float64{a.CenterX() - tol, a.Y1}
		hi = [2]float64{a.CenterX() + tol, a.Y1 + g.MaxVerticalGap}
	}

	tr.Search(lo, hi, func(_, _ [2]float64, i int) bool {
		if i == ai {
			return true
		}
		b := elements[i].Box
		if math.Abs(b.CenterX()-a.CenterX()) > tol {
			return true
		}
		var gap float64
		if g.Type == TypeAbove {
			if b.CenterY() >= a.CenterY() {
				return true
			}
			gap = a.Y0 - b.Y1
		} else {
			if b.CenterY() <= a.CenterY() {
				return true
			}
			gap = b.Y0 - a.Y1
		}
		if gap > g.MaxVerticalGap {
			return true
		}
		if v, ok := s.patterns.MatchType(elements[i].Text); ok {
			hit.offer(v, math.Abs(b.CenterY()-a.CenterY()))
		}
		return true
	})
	return hit.value, hit.value != ""
}

func (s *PositionStrategy) findLength(tr *rtree.RTreeG[int], elements []TextElement, ai int) (string, bool) {
	a := elements[ai].Box
	g := s.geometry
	var hit spatialHit

	if g.Length == LengthNearest {
		lo := [2]float64{a.CenterX() - g.MaxDistance, a.CenterY() - g.MaxDistance}
		hi := [2]float64{a.CenterX() + g.MaxDistance, a.CenterY() + g.MaxDistance}
		tr.Search(lo, hi, func(_, _ [2]float64, i int) bool {
			if i == ai {
				return true
			}
			b := elements[i].Box
			d := math.Hypot(b.CenterX()-a.CenterX(), b.CenterY()-a.CenterY())
			if d > g.MaxDistance {
				return true
			}
			if v, ok := s.patterns.MatchLength(elements[i].Text); ok {
				hit.offer(v, d)
			}
			return true
		})
		return hit.value, hit.value != ""
	}

	lo := [2]float64{a.X1, a.CenterY() - g.RowTolerance}
	hi := [2]float64{a.X1 + g.MaxRightGap, a.CenterY() + g.RowTolerance}
	tr.Search(lo, hi, func(_, _ [2]float64, i int) bool {
		if i == ai {
			return true
		}
		b := elements[i].Box
		if b.CenterX() <= a.CenterX() || b.X0 < a.X0 {
			return true
		}
		if math.Abs(b.CenterY()-a.CenterY()) > g.RowTolerance {
			return true
		}
		gap := math.Max(0, b.X0-a.X1)
		if gap > g.MaxRightGap {
			return true
		}
		if v, ok := s.patterns.MatchLength(elements[i].Text); ok {
			hit.offer(v, gap)
		}
		return true
	})
	return hit.value, hit.value != ""
}
