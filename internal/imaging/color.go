package imaging

import (
	"image/color"
	"regexp"
	"strconv"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseHexColor parses a 7-character "#rrggbb" value.
func ParseHexColor(s string) (color.NRGBA, bool) {
	if !hexColor.MatchString(s) {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// HexColorOrDefault returns the parsed color, or def with ok=false when s is
// not a valid hex color.
func HexColorOrDefault(s string, def color.NRGBA) (color.NRGBA, bool) {
	if c, ok := ParseHexColor(s); ok {
		return c, true
	}
	return def, false
}

// Hex formats c as "#rrggbb".
func Hex(c color.NRGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
