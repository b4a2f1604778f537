// Package qr renders payload text into scannable QR images.
package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// Renderer draws QR codes. The zero value is ready to use and safe for
// concurrent callers.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Image encodes payload and draws it with the requested margin, size and colors.
func (r *Renderer) Image(payload string, opts RenderOptions) (image.Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	code, err := qrcode.New(payload, opts.Level.recovery())
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	// The library quiet zone is fixed at four modules; draw our own instead.
	code.DisableBorder = true
	modules := code.Bitmap()

	size := len(modules)
	total := size + 2*opts.Margin
	width := opts.Width
	if width < total {
		width = total
	}

	img := image.NewPaletted(image.Rect(0, 0, width, width), color.Palette{opts.Light, opts.Dark})
	modulesPerPixel := float64(total) / float64(width)
	for y := 0; y < width; y++ {
		my := int(float64(y)*modulesPerPixel) - opts.Margin
		if my < 0 || my >= size {
			continue
		}
		for x := 0; x < width; x++ {
			mx := int(float64(x)*modulesPerPixel) - opts.Margin
			if mx >= 0 && mx < size && modules[my][mx] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img, nil
}

// PNG renders payload as PNG bytes.
func (r *Renderer) PNG(payload string, opts RenderOptions) ([]byte, error) {
	img, err := r.Image(payload, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("qr: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL renders payload as a base64 PNG data URL for direct use in <img src>.
func (r *Renderer) DataURL(payload string, opts RenderOptions) (string, error) {
	data, err := r.PNG(payload, opts)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}
