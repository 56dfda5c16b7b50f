// Package qr renders QR codes with a configurable module size, quiet zone and
// colors on top of the go-qrcode encoder.
package qr

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultModuleSize = 10
	DefaultBorder     = 4
	MaxModuleSize     = 50
	MaxBorder         = 20
	MaxDataLength     = 2048
)

// Options controls the rendered symbol.
type Options struct {
	Level      qrcode.RecoveryLevel
	ModuleSize int
	Border     int
	Foreground color.Color
	Background color.Color
}

// DefaultOptions returns black on white, medium error correction.
func DefaultOptions() Options {
	return Options{
		Level:      qrcode.Medium,
		ModuleSize: DefaultModuleSize,
		Border:     DefaultBorder,
		Foreground: color.Black,
		Background: color.White,
	}
}

// ParseLevel maps L/M/Q/H to a recovery level. Empty means M.
func ParseLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return qrcode.Low, nil
	case "", "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("invalid error correction level %q", s)
}

// ParseBounded parses an int within [lo, hi]; empty yields def.
func ParseBounded(s string, def, lo, hi int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("value must be a whole number between %d and %d", lo, hi)
	}
	return n, nil
}

// Generate encodes data and draws every module as a ModuleSize square with
// Border modules of quiet zone on each side.
func Generate(data string, opts Options) (image.Image, error) {
	if data == "" {
		return nil, fmt.Errorf("no data to encode")
	}
	if len(data) > MaxDataLength {
		return nil, fmt.Errorf("data is longer than %d characters", MaxDataLength)
	}
	code, err := qrcode.New(data, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()

	modules := len(bitmap)
	side := (modules + 2*opts.Border) * opts.ModuleSize
	palette := color.Palette{opts.Background, opts.Foreground}
	img := image.NewPaletted(image.Rect(0, 0, side, side), palette)

	offset := opts.Border * opts.ModuleSize
	for row := range bitmap {
		for col, dark := range bitmap[row] {
			if !dark {
				continue
			}
			x0 := offset + col*opts.ModuleSize
			y0 := offset + row*opts.ModuleSize
			for y := y0; y < y0+opts.ModuleSize; y++ {
				for x := x0; x < x0+opts.ModuleSize; x++ {
					img.SetColorIndex(x, y, 1)
				}
			}
		}
	}
	return img, nil
}

// Modules returns the symbol width in modules (without quiet zone) for data.
func Modules(data string, level qrcode.RecoveryLevel) (int, error) {
	code, err := qrcode.New(data, level)
	if err != nil {
		return 0, err
	}
	code.DisableBorder = true
	return len(code.Bitmap()), nil
}
