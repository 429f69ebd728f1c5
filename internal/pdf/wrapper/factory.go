package wrapper

import (
	"errors"
	"fmt"
	"os"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// FactoryConfig contains configuration options for opening backends
type FactoryConfig struct {
	// MaxFileSize limits the file size accepted by Open (in bytes, 0 = no limit)
	MaxFileSize int64 `json:"max_file_size"`

	// EnableRaster attaches a MuPDF rasterizer for the OCR strategy
	EnableRaster bool `json:"enable_raster"`
}

// DefaultFactoryConfig returns the configuration used by the service
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		MaxFileSize:  100 * 1024 * 1024, // 100MB
		EnableRaster: true,
	}
}

// Backends bundles every library opened for one file
type Backends struct {
	Path      string
	Structure *StructureInfo
	Doc       *LedongthucDocument
	Raster    *FitzRasterizer
}

// Open inspects the file with pdfcpu, then opens the text backend and,
// when enabled, the rasterizer. A structure that pdfcpu cannot read is not
// fatal as long as ledongthuc can open the file.
func Open(path string, config FactoryConfig) (*Backends, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &WrapperError{Op: "open", Err: fmt.Errorf("cannot access file: %w", err)}
	}
	if config.MaxFileSize > 0 && info.Size() > config.MaxFileSize {
		return nil, &WrapperError{
			Op:  "open",
			Err: fmt.Errorf("file size %d exceeds maximum %d", info.Size(), config.MaxFileSize),
		}
	}

	structure, inspectErr := InspectFile(path)
	if structure != nil && structure.Encrypted {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open", Err: fmt.Errorf("encrypted PDFs are not supported")}
	}

	doc, err := OpenLedongthuc(path)
	if err != nil {
		return nil, errors.Join(err, inspectErr)
	}

	b := &Backends{Path: path, Structure: structure, Doc: doc}
	if config.EnableRaster {
		b.Raster = NewFitzRasterizer(path)
	}
	return b, nil
}

// Input wires the backends into an extraction input. A nil recognizer
// disables OCR.
func (b *Backends) Input(ocr extraction.Recognizer) extraction.Input {
	in := extraction.Input{Path: b.Path, Doc: b.Doc}
	if b.Raster != nil && ocr != nil {
		in.Raster = b.Raster
		in.OCR = ocr
	}
	return in
}

// Close releases all opened libraries
func (b *Backends) Close() error {
	var errs []error
	if b.Doc != nil {
		errs = append(errs, b.Doc.Close())
	}
	if b.Raster != nil {
		errs = append(errs, b.Raster.Close())
	}
	return errors.Join(errs...)
}
