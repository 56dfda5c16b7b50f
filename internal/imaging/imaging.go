// Package imaging wraps the image codecs used by the image tools: decoding any
// supported upload, re-encoding at a quality, flattening alpha, rotating with
// an expanded canvas and compositing onto a solid background.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"go-filetools/internal/pdf"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is an encodable image format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists the conversion targets in display order.
var Formats = []Format{PNG, JPEG, GIF, BMP, TIFF}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ContentType returns the MIME type.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ParseQuality parses a 1-100 quality value; empty yields def.
func ParseQuality(s string, def int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || q < 1 || q > 100 {
		return 0, fmt.Errorf("quality must be a whole number between 1 and 100")
	}
	return q, nil
}

// Decode reads any registered format (png, jpeg, gif, bmp, tiff, webp) and
// returns the detected format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Encode writes img as format. quality applies to JPEG directly; for PNG a
// quality below 50 selects the strongest deflate level.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case JPEG:
		return jpeg.Encode(w, Flatten(img, color.White), &jpeg.Options{Quality: quality})
	case PNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if quality < 50 {
			enc.CompressionLevel = png.BestCompression
		}
		return enc.Encode(w, img)
	case GIF:
		return gif.Encode(w, img, &gif.Options{NumColors: 256})
	case BMP:
		return bmp.Encode(w, Flatten(img, color.White))
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// EncodeBytes is Encode into a buffer.
func EncodeBytes(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Flatten draws img over a solid background, dropping transparency.
func Flatten(img image.Image, bg color.Color) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}
	return Composite(img, bg)
}

// Composite draws fg over a canvas filled with bg.
func Composite(fg image.Image, bg color.Color) *image.NRGBA {
	b := fg.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), fg, b.Min, draw.Over)
	return dst
}

// Rotate turns src clockwise by degrees on a canvas grown to hold the whole
// rotated image. Uncovered corners are transparent.
func Rotate(src image.Image, degrees int) image.Image {
	d := ((degrees % 360) + 360) % 360
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch d {
	case 0:
		return src
	case 90, 180, 270:
		return rotateQuarter(src, d)
	}

	size := pdf.RotatedBounds(float64(w), float64(h), d)
	dw := int(math.Ceil(size.Width - 1e-6))
	dh := int(math.Ceil(size.Height - 1e-6))
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	theta := float64(d) * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	cx := float64(b.Min.X) + float64(w)/2
	cy := float64(b.Min.Y) + float64(h)/2
	s2d := f64.Aff3{
		cos, -sin, float64(dw)/2 - (cos*cx - sin*cy),
		sin, cos, float64(dh)/2 - (sin*cx + cos*cy),
	}
	draw.BiLinear.Transform(dst, s2d, src, b, draw.Src, nil)
	return dst
}

func rotateQuarter(src image.Image, d int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.NRGBA
	if d == 180 {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(b.Min.X+x, b.Min.Y+y)
			switch d {
			case 90:
				dst.Set(h-1-y, x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}

// Fit scales img down so it fits within maxWidth x maxHeight, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth && h <= maxHeight {
		return img
	}
	ratio := math.Min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	nw := max(1, int(math.Round(float64(w)*ratio)))
	nh := max(1, int(math.Round(float64(h)*ratio)))
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
