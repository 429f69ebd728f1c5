package wrapper

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders pages with MuPDF. The document is opened on the
// first render so text-only runs never load MuPDF.
type FitzRasterizer struct {
	mu       sync.Mutex
	filePath string
	doc      *fitz.Document
	closed   bool
}

// NewFitzRasterizer prepares a rasterizer for the given file
func NewFitzRasterizer(path string) *FitzRasterizer {
	return &FitzRasterizer{filePath: path}
}

// RenderPage renders a 1-based page at the given resolution
func (r *FitzRasterizer) RenderPage(pageNum int, dpi float64) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, &WrapperError{Library: LibraryFitz, Op: "render_page", Err: ErrDocumentClosed.Err}
	}
	if r.doc == nil {
		doc, err := fitz.New(r.filePath)
		if err != nil {
			return nil, &WrapperError{Library: LibraryFitz, Op: "open_file", Err: fmt.Errorf("failed to open PDF: %w", err)}
		}
		r.doc = doc
	}

	if pageNum < 1 || pageNum > r.doc.NumPage() {
		return nil, &WrapperError{
			Library: LibraryFitz,
			Op:      "render_page",
			Err:     fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage.Err, pageNum, r.doc.NumPage()),
		}
	}

	img, err := r.doc.ImageDPI(pageNum-1, dpi)
	if err != nil {
		return nil, &WrapperError{Library: LibraryFitz, Op: "render_page", Err: err}
	}
	return img, nil
}

// Close releases the MuPDF document if it was opened
func (r *FitzRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}
