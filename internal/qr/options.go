package qr

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Level is the QR error-correction level.
type Level string

const (
	LevelLow      Level = "L"
	LevelMedium   Level = "M"
	LevelQuartile Level = "Q"
	LevelHigh     Level = "H"
)

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelQuartile, LevelHigh:
		return true
	}
	return false
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelLow:
		return qrcode.Low
	case LevelQuartile:
		return qrcode.High
	case LevelHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// ParseLevel accepts L, M, Q or H in either case.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("qr: invalid error correction level %q (must be L, M, Q or H)", s)
	}
	return l, nil
}

// Width bounds for rendered images.
const (
	MinWidth = 64
	MaxWidth = 2048
)

// RenderOptions configures how a payload is drawn.
type RenderOptions struct {
	Level Level
	// Margin is the quiet zone around the symbol, in modules.
	Margin int
	// Width is the image width and height in pixels.
	Width int
	Dark  color.RGBA
	Light color.RGBA
}

// DefaultRenderOptions matches the donation page: level M, one-module
// margin, 640px, near-black on white.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Level:  LevelMedium,
		Margin: 1,
		Width:  640,
		Dark:   color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF},
		Light:  color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
}

// Validate checks level, margin and width bounds.
func (o RenderOptions) Validate() error {
	if !o.Level.Valid() {
		return fmt.Errorf("qr: invalid error correction level %q", o.Level)
	}
	if o.Margin < 0 || o.Margin > 16 {
		return fmt.Errorf("qr: margin must be between 0 and 16 modules, got %d", o.Margin)
	}
	if o.Width < MinWidth || o.Width > MaxWidth {
		return fmt.Errorf("qr: width must be between %d and %d, got %d", MinWidth, MaxWidth, o.Width)
	}
	if o.Dark == o.Light {
		return fmt.Errorf("qr: dark and light colors must differ")
	}
	return nil
}

// ParseHexColor parses #RRGGBB (the leading # is optional).
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("qr: invalid color %q (want #RRGGBB)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("qr: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// HexColor formats c as #RRGGBB.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
