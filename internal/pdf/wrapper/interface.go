package wrapper

import (
	"fmt"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// LibraryType names the backend library behind an operation
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
	LibraryFitz       LibraryType = "go-fitz"
)

// Compile-time checks that the backends satisfy the extraction contracts.
var (
	_ extraction.Document   = (*LedongthucDocument)(nil)
	_ extraction.Rasterizer = (*FitzRasterizer)(nil)
)

// StructureInfo is what pdfcpu reports about the file structure
type StructureInfo struct {
	PageCount int    `json:"page_count"`
	Version   string `json:"version"`
	Encrypted bool   `json:"encrypted"`
}

// WrapperError reports a failure inside one backend library
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &WrapperError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
)
