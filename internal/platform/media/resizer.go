// Package media decodes, resizes and re-encodes uploaded images.
package media

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// Resizer scales images to a fixed width with imaging.
type Resizer struct {
	filter imaging.ResampleFilter
}

// NewResizer creates a Resizer using Lanczos resampling.
func NewResizer() *Resizer {
	return &Resizer{filter: imaging.Lanczos}
}

// Resize decodes data, scales it to width with the height following the aspect ratio,
// and encodes it as format. Unknown formats are encoded as PNG.
func (r *Resizer) Resize(data []byte, format string, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Resize(img, width, 0, r.filter)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, encodeFormat(format)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeFormat(format string) imaging.Format {
	f, err := imaging.FormatFromExtension(strings.ToLower(format))
	if err != nil {
		return imaging.PNG
	}
	return f
}
