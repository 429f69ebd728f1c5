//go:build !ocr

package ocr

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackIsUnavailable(t *testing.T) {
	r, _ := New(Config{Language: "eng"})
	assert.False(t, Available())

	_, err := r.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, ErrUnavailable)
}
