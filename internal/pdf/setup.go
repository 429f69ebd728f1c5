package pdf

import (
	"fmt"

	"github.com/a3tai/mcp-cable-extractor/internal/config"
	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	"github.com/a3tai/mcp-cable-extractor/internal/ocr"
)

// NewFromConfig builds a service from a loaded configuration. The returned
// close function releases the OCR engine and is never nil.
func NewFromConfig(cfg *config.Config) (*Service, func(), error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid extraction settings: %w", err)
	}

	opts := Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.PDFDirectory,
		Engine:      engineCfg,
	}

	closeFn := func() {}
	if cfg.Extraction.OCR {
		if !ocr.Available() {
			logger.For("setup").Warn("OCR requested but this build has no OCR support")
		} else {
			recognizer, err := ocr.New(ocr.Config{Language: cfg.Extraction.OCRLanguage})
			if err != nil {
				return nil, nil, fmt.Errorf("failed to start OCR: %w", err)
			}
			opts.OCR = recognizer
			closeFn = func() { _ = recognizer.Close() }
		}
	}

	svc, err := NewService(opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}
