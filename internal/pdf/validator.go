package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/wrapper"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that the file is a readable PDF and reports whether it
// carries a text layer or will need OCR
func (v *Validator) ValidateFile(req CableValidateFileRequest) (*CableValidateFileResult, error) {
	result := &CableValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if err := v.validatePDFFile(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	if err := wrapper.ValidateStructure(req.Path); err != nil {
		result.Message = fmt.Sprintf("invalid PDF structure: %v", err)
		return result, nil //nolint:nilerr // same as above
	}

	if info, err := wrapper.InspectFile(req.Path); err == nil {
		result.Pages = info.PageCount
		result.Version = info.Version
		if info.Encrypted {
			result.Message = "encrypted PDFs are not supported"
			return result, nil
		}
	}

	doc, err := wrapper.OpenLedongthuc(req.Path)
	if err != nil {
		result.Message = fmt.Sprintf("invalid PDF file: %v", err)
		return result, nil //nolint:nilerr // same as above
	}
	defer doc.Close()

	if result.Pages == 0 {
		result.Pages = doc.PageCount()
	}
	result.HasTextLayer = doc.HasTextLayer()
	result.NeedsOCR = !result.HasTextLayer
	result.Valid = true
	return result, nil
}

// validatePDFFile performs the cheap checks that need no PDF parsing
func (v *Validator) validatePDFFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	return v.ValidateFileInfo(filePath, fileInfo)
}

// IsValidPDF performs a quick check to see if a file looks like a PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.validatePDFFile(filePath) == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
