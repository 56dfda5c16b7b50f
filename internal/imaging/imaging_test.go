package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"png": PNG, "JPG": JPEG, ".jpeg": JPEG, "gif": GIF, "bmp": BMP, "tif": TIFF}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("heic")
	assert.Error(t, err)

	assert.Equal(t, ".jpg", JPEG.Ext())
	assert.Equal(t, "image/tiff", TIFF.ContentType())
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, q)

	q, err = ParseQuality(" 85 ", 30)
	require.NoError(t, err)
	assert.Equal(t, 85, q)

	for _, bad := range []string{"0", "101", "high"} {
		_, err := ParseQuality(bad, 30)
		assert.Error(t, err, bad)
	}
}

func TestEncodeDecodeEveryFormat(t *testing.T) {
	src := gradient(40, 20)
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := EncodeBytes(src, f, 80)
			require.NoError(t, err)

			img, name, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, string(f), name)
			assert.Equal(t, 40, img.Bounds().Dx())
			assert.Equal(t, 20, img.Bounds().Dy())
		})
	}
}

func TestJPEGQualityAffectsSize(t *testing.T) {
	src := gradient(200, 200)
	low, err := EncodeBytes(src, JPEG, 10)
	require.NoError(t, err)
	high, err := EncodeBytes(src, JPEG, 95)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")))
	assert.Error(t, err)
}

func TestRotateQuarterTurns(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	red := color.NRGBA{R: 255, A: 255}
	src.Set(0, 0, red)

	r90 := Rotate(src, 90)
	assert.Equal(t, image.Rect(0, 0, 2, 3), r90.Bounds())
	assert.Equal(t, red, r90.At(1, 0))

	r180 := Rotate(src, 180)
	assert.Equal(t, image.Rect(0, 0, 3, 2), r180.Bounds())
	assert.Equal(t, red, r180.At(2, 1))

	r270 := Rotate(src, -90)
	assert.Equal(t, image.Rect(0, 0, 2, 3), r270.Bounds())
	assert.Equal(t, red, r270.At(0, 2))

	assert.Same(t, src, Rotate(src, 360).(*image.NRGBA))
}

func TestRotateArbitraryExpandsCanvas(t *testing.T) {
	src := gradient(100, 100)
	out := Rotate(src, 45)

	assert.Equal(t, 142, out.Bounds().Dx())
	assert.Equal(t, 142, out.Bounds().Dy())

	_, _, _, a := out.At(0, 0).RGBA()
	assert.Zero(t, a, "corner outside the rotated square stays transparent")
	_, _, _, a = out.At(71, 71).RGBA()
	assert.NotZero(t, a)
}

func TestFit(t *testing.T) {
	small := gradient(10, 10)
	assert.Same(t, small, Fit(small, 100, 100).(*image.NRGBA))

	big := Fit(gradient(400, 200), 100, 100)
	assert.Equal(t, 100, big.Bounds().Dx())
	assert.Equal(t, 50, big.Bounds().Dy())
}

func TestCompositeFillsTransparency(t *testing.T) {
	fg := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	fg.Set(1, 0, color.NRGBA{G: 255, A: 255})
	blue := color.NRGBA{B: 255, A: 255}

	out := Composite(fg, blue)
	assert.Equal(t, blue, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, out.NRGBAAt(1, 0))
}

func TestFlattenKeepsOpaqueImages(t *testing.T) {
	opaque := gradient(4, 4)
	assert.Same(t, opaque, Flatten(opaque, color.White).(*image.NRGBA))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, opaque))
}

func TestParseHexColor(t *testing.T) {
	c, ok := ParseHexColor("#1a2B3c")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)
	assert.Equal(t, "#1a2b3c", Hex(c))

	for _, bad := range []string{"", "#fff", "123456", "#12345g", "#1234567"} {
		_, ok := ParseHexColor(bad)
		assert.False(t, ok, bad)
	}

	def := color.NRGBA{A: 0xff}
	got, ok := HexColorOrDefault("blue", def)
	assert.False(t, ok)
	assert.Equal(t, def, got)
}
