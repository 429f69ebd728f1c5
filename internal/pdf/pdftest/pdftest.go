// Package pdftest builds small text PDFs for tests.
//
// Every glyph of the embedded Helvetica is 600 units wide, so a string at
// font size 10 advances 6 points per character. That makes word and column
// positions predictable for layout tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GlyphWidth is the advance of one character at font size 1
const GlyphWidth = 0.6

// Text is one string drawn with its baseline at (X, Y) in PDF user space
type Text struct {
	X, Y float64
	S    string
	Size float64 // defaults to 10
}

// Page is the content of one page. A zero size means US Letter.
type Page struct {
	Texts         []Text
	Width, Height float64
}

func (p Page) mediaBox() string {
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		w, h = 612, 792
	}
	return fmt.Sprintf("[0 0 %g %g]", w, h)
}

// Build returns the bytes of a PDF with one page per entry
func Build(pages ...Page) []byte {
	var objs []string
	// 1 catalog, 2 pages, 3 font, then page/content pairs
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		fontObject(),
	)
	for i, p := range pages {
		stream := contentStream(p)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox %s "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", p.mediaBox(), 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// Write stores a generated PDF as dir/name and returns its path
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// Table lays out rows as text-aligned columns starting at (x, y), one row
// every 20 points downwards, columns every colWidth points
func Table(x, y, colWidth float64, rows ...[]string) Page {
	var p Page
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			p.Texts = append(p.Texts, Text{X: x + float64(c)*colWidth, Y: y - float64(r)*20, S: cell})
		}
	}
	return p
}

// CableListHeader resolves to ten canonical fields, enough for the row
// header strategy to accept it
var CableListHeader = []string{
	"Kabel-Nr", "Typ", "mm", "Trommel", "Metr.", "Metr.", "SOLL", "IST", "Verlegeart", "Bemerkung",
}

// CableRow is a data row for CableList: nr, typ and ist vary, the other
// columns hold fixed values
func CableRow(nr, typ, ist string) []string {
	return []string{nr, typ, "12", "T7", "0", ist, ist, ist, "Erde", "ok"}
}

// CableList lays out a header and rows on an A4 landscape page
func CableList(rows ...[]string) Page {
	p := Table(30, 540, 78, append([][]string{CableListHeader}, rows...)...)
	p.Width, p.Height = 842, 595
	return p
}

func fontObject() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "600"
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 32 /LastChar 126 " +
		"/Widths [" + strings.Join(widths, " ") + "] >>"
}

func contentStream(p Page) string {
	var b strings.Builder
	for _, t := range p.Texts {
		size := t.Size
		if size <= 0 {
			size = 10
		}
		fmt.Fprintf(&b, "BT /F1 %.1f Tf 1 0 0 1 %.2f %.2f Tm (%s) Tj ET\n", size, t.X, t.Y, escape(t.S))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
