package wrapper

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// InspectFile reads the cross-reference structure of a PDF on disk with pdfcpu
func InspectFile(path string) (*StructureInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	return Inspect(file)
}

// Inspect reads the cross-reference structure of a PDF with pdfcpu
func Inspect(rs io.ReadSeeker) (*StructureInfo, error) {
	ctx, err := api.ReadContext(rs, relaxedConfig())
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "inspect",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	info := &StructureInfo{
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}

// ValidateStructure runs the pdfcpu validator in relaxed mode
func ValidateStructure(path string) error {
	if err := api.ValidateFile(path, relaxedConfig()); err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "validate", Err: err}
	}
	return nil
}
