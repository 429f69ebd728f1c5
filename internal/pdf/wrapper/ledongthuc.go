package wrapper

import (
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// LedongthucDocument reads text positions and ruled tables with ledongthuc/pdf
type LedongthucDocument struct {
	mu       sync.Mutex
	reader   *pdf.Reader
	file     *os.File
	filePath string
	closed   bool
	pages    map[int]*pageLayout
}

// pageLayout is the decoded content of one page
type pageLayout struct {
	glyphs  []glyph
	rulings rulings
}

// OpenLedongthuc opens a PDF from a file path
func OpenLedongthuc(path string) (*LedongthucDocument, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	return &LedongthucDocument{
		reader:   reader,
		file:     f,
		filePath: path,
		pages:    make(map[int]*pageLayout),
	}, nil
}

// PageCount returns the number of pages in the document
func (d *LedongthucDocument) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	return d.reader.NumPage()
}

// TextElements returns the phrases of a page in reading order
func (d *LedongthucDocument) TextElements(pageNum int) ([]extraction.TextElement, error) {
	layout, err := d.layout(pageNum, "extract_text")
	if err != nil {
		return nil, err
	}

	var out []extraction.TextElement
	for _, line := range phraseLines(layout.glyphs) {
		out = append(out, line...)
	}
	return out, nil
}

// TableGrids returns the raw cell grid of a page. Ruled tables win; pages
// without usable rules fall back to text alignment.
func (d *LedongthucDocument) TableGrids(pageNum int) ([]extraction.RawTable, error) {
	layout, err := d.layout(pageNum, "extract_tables")
	if err != nil {
		return nil, err
	}

	rows := ruledGrid(layout.rulings, layout.glyphs)
	if rows == nil {
		rows = alignedGrid(phraseLines(layout.glyphs))
	}
	if rows == nil {
		return nil, nil
	}
	return []extraction.RawTable{{Page: pageNum, Index: 0, Rows: rows}}, nil
}

// HasTextLayer reports whether any page carries extractable text.
// Content streams ledongthuc cannot decode count as no text.
func (d *LedongthucDocument) HasTextLayer() bool {
	for i := 1; i <= d.PageCount(); i++ {
		if ok := d.pageHasText(i); ok {
			return true
		}
	}
	return false
}

func (d *LedongthucDocument) pageHasText(pageNum int) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	layout, err := d.layout(pageNum, "has_text")
	return err == nil && len(layout.glyphs) > 0
}

// Close closes the document
func (d *LedongthucDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.pages = nil
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

func (d *LedongthucDocument) layout(pageNum int, op string) (*pageLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: op, Err: ErrDocumentClosed.Err}
	}
	if cached, ok := d.pages[pageNum]; ok {
		return cached, nil
	}
	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      op,
			Err:     fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage.Err, pageNum, d.reader.NumPage()),
		}
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: op, Err: fmt.Errorf("page %d not found", pageNum)}
	}

	height := pageHeight(page.V)
	content := page.Content()
	layout := &pageLayout{
		glyphs:  glyphsFromText(content.Text, height),
		rulings: rulingsFromRects(content.Rect, height),
	}
	d.pages[pageNum] = layout
	return layout, nil
}

// pageHeight reads the MediaBox, walking up the page tree for inherited boxes
func pageHeight(v pdf.Value) float64 {
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}
