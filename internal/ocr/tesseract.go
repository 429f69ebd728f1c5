//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs Tesseract on page images. gosseract clients are not safe
// for concurrent use, so calls are serialised.
type Recognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
	config Config
}

// New creates a Tesseract-backed recognizer
func New(config Config) (*Recognizer, error) {
	if config.Language == "" {
		config.Language = DefaultLanguage
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(config.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language %q: %w", config.Language, err)
	}
	return &Recognizer{client: client, config: config}, nil
}

// Available reports whether OCR was compiled in
func Available() bool { return true }

// Recognize returns the text lines found on the image
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to load page image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract failed: %w", err)
	}
	return splitLines(text), nil
}

// Close releases the Tesseract client
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}
