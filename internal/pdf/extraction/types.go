package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
)

// BoundingBox is a rectangle in page space with the origin at the top-left
// corner and y growing downward.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// CenterX returns the horizontal midpoint
func (b BoundingBox) CenterX() float64 { return (b.X0 + b.X1) / 2 }

// CenterY returns the vertical midpoint
func (b BoundingBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// Width returns the box width
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the box height
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// TextElement is a positioned piece of text on a page
type TextElement struct {
	Text string      `json:"text"`
	Box  BoundingBox `json:"box"`
}

// RawTable is a table grid as produced by the PDF backend. Rows may have
// different lengths; missing cells are empty strings.
type RawTable struct {
	Page  int        `json:"page"`
	Index int        `json:"index"`
	Rows  [][]string `json:"rows"`
}

// Column is one labelled column of a resolved table. Values holds only the
// cells that were present, in row order.
type Column struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// ResolvedTable is a header-labelled table ready for field merging
type ResolvedTable struct {
	Page    int      `json:"page"`
	Index   int      `json:"index"`
	Columns []Column `json:"columns"`
}

// Labels returns the column labels in order
func (t *ResolvedTable) Labels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}

// Column returns the column with the given label
func (t *ResolvedTable) Column(label string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Label == label {
			return c, true
		}
	}
	return Column{}, false
}

// FieldMap maps canonical field names to their values and keeps the order in
// which fields were first seen. It marshals as a JSON object of arrays.
type FieldMap struct {
	order  []string
	values map[string][]string
}

// NewFieldMap creates an empty FieldMap
func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string][]string)}
}

// Append adds values under field, registering the field even if no values are given
func (m *FieldMap) Append(field string, values ...string) {
	if _, ok := m.values[field]; !ok {
		m.order = append(m.order, field)
		m.values[field] = []string{}
	}
	m.values[field] = append(m.values[field], values...)
}

// Get returns the values of a field
func (m *FieldMap) Get(field string) []string {
	return m.values[field]
}

// Has reports whether the field was registered
func (m *FieldMap) Has(field string) bool {
	_, ok := m.values[field]
	return ok
}

// Fields returns field names in first-seen order
func (m *FieldMap) Fields() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// TotalValues counts values across all fields
func (m *FieldMap) TotalValues() int {
	n := 0
	for _, v := range m.values {
		n += len(v)
	}
	return n
}

// Merge appends every field of other onto m
func (m *FieldMap) Merge(other *FieldMap) {
	if other == nil {
		return
	}
	for _, f := range other.order {
		m.Append(f, other.values[f]...)
	}
}

// MarshalJSON writes the fields in first-seen order
func (m *FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		vals, err := json.Marshal(m.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CableRecord is one cable found on a schematic page. Type and Length are nil
// when nothing matching was found near the anchor.
type CableRecord struct {
	Identifier string  `json:"identifier"`
	Type       *string `json:"type"`
	Length     *string `json:"length"`
}

// ResultKind tells which shape a Result carries
type ResultKind string

const (
	KindTabular   ResultKind = "tabular"
	KindSchematic ResultKind = "schematic"
)

// Result is the outcome of one extraction
type Result struct {
	Kind     ResultKind    `json:"kind"`
	Strategy string        `json:"strategy"`
	Fields   *FieldMap     `json:"fields,omitempty"`
	Records  []CableRecord `json:"records,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// IsEmpty reports whether the result carries no extracted values
func (r *Result) IsEmpty() bool {
	if r == nil {
		return true
	}
	switch r.Kind {
	case KindTabular:
		return r.Fields == nil || r.Fields.TotalValues() == 0
	case KindSchematic:
		return len(r.Records) == 0
	default:
		return true
	}
}

// Document is the per-page view of a PDF the strategies consume. Pages are 1-based.
type Document interface {
	PageCount() int
	TableGrids(page int) ([]RawTable, error)
	TextElements(page int) ([]TextElement, error)
}

// Rasterizer renders a page to an image
type Rasterizer interface {
	RenderPage(page int, dpi float64) (image.Image, error)
}

// Recognizer turns a page image into text lines in reading order
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]string, error)
}

// Input bundles the backends for one document. Raster and OCR may be nil,
// which disables the OCR strategy.
type Input struct {
	Path   string
	Doc    Document
	Raster Rasterizer
	OCR    Recognizer
}
