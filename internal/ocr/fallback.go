//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Recognizer is the stand-in used when Tesseract is not compiled in
type Recognizer struct {
	config Config
}

// New returns a recognizer whose calls fail with ErrUnavailable
func New(config Config) (*Recognizer, error) {
	if config.Language == "" {
		config.Language = DefaultLanguage
	}
	return &Recognizer{config: config}, nil
}

// Available reports whether OCR was compiled in
func Available() bool { return false }

// Recognize always fails with ErrUnavailable
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}

// Close is a no-op
func (r *Recognizer) Close() error { return nil }
