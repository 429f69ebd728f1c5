package ocr

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"trailing newlines", "S12345\nNYY 3x1,5\n\n", []string{"S12345", "NYY 3x1,5"}},
		{"windows line endings", "a\r\n\r\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.in))
		})
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)

	data, err := encodePNG(img)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	_, err = encodePNG(nil)
	assert.Error(t, err)
}

func TestRecognizerHonoursCancellation(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, DefaultLanguage, r.config.Language)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Recognize(ctx, image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, context.Canceled)
}
