package pdf

import "math"

// BaseWidth is the placed image width, in points, at scale 1.
const BaseWidth = 150.0

// PlacementSpec positions an overlay as fractions of the page measured from
// the top-left corner.
type PlacementSpec struct {
	XRatio   float64
	YRatio   float64
	Scale    float64
	Rotation int // degrees, clockwise
}

// Size is a width/height pair in points or pixels.
type Size struct {
	Width  float64
	Height float64
}

// Placement is an absolute, bottom-left origin box on a page.
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RotatedBounds returns the bounding box of a w x h rectangle rotated by
// degrees. Quarter turns are exact.
func RotatedBounds(w, h float64, degrees int) Size {
	switch ((degrees % 360) + 360) % 360 {
	case 0, 180:
		return Size{Width: w, Height: h}
	case 90, 270:
		return Size{Width: h, Height: w}
	}
	theta := float64(degrees) * math.Pi / 180
	sin, cos := math.Abs(math.Sin(theta)), math.Abs(math.Cos(theta))
	return Size{
		Width:  w*cos + h*sin,
		Height: w*sin + h*cos,
	}
}

// Place converts a ratio placement into page coordinates. The image is
// rotated first, then scaled to BaseWidth*Scale keeping the rotated aspect
// ratio. Ratios outside [0,1] pass through unchanged.
func Place(spec PlacementSpec, page, image Size) Placement {
	rotated := image
	if spec.Rotation != 0 {
		rotated = RotatedBounds(image.Width, image.Height, spec.Rotation)
	}

	width := BaseWidth * spec.Scale
	height := width * (rotated.Height / rotated.Width)

	return Placement{
		X:      page.Width * spec.XRatio,
		Y:      page.Height - (page.Height * spec.YRatio) - height,
		Width:  width,
		Height: height,
	}
}
