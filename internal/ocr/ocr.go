// Package ocr turns rendered page images into text lines.
//
// Recognition is backed by Tesseract through gosseract and is only compiled
// in with the "ocr" build tag, since it needs the Tesseract C libraries:
//
//	go build -tags ocr ./...
//
// Without the tag every call fails with ErrUnavailable and the extraction
// engine treats OCR as a failed backend.
package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// ErrUnavailable is returned when the binary was built without Tesseract
var ErrUnavailable = errors.New("OCR functionality requires Tesseract; rebuild with -tags ocr after installing tesseract-ocr")

// DefaultLanguage is the Tesseract language pack used for site plans
const DefaultLanguage = "deu"

// Config holds recognizer settings
type Config struct {
	Language string
}

// encodePNG serialises an image for engines that only take encoded bytes
func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to recognize")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

// splitLines breaks recognised text into lines, keeping blank lines so that
// callers see the original line structure.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
