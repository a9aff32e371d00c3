// Package geometry converts between viewport pixels, rendered-page pixels, and
// rotation/zoom-invariant annotation coordinates. Every function is pure.
package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Point is a 2-D coordinate. The space it lives in is decided by the caller.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is either a rectangle or, when Path is non-nil, a free-form stroke.
type Shape struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Path   []Point `json:"path,omitempty"`
}

// IsPath reports whether the shape is a stroke path rather than a rectangle.
func (s Shape) IsPath() bool {
	return s.Path != nil
}

// Rect mirrors the fields of a browser DOMRect that matter for annotations.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Dimensions is an unscaled image or page size.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Translation is an offset applied by TranslatePoint.
type Translation struct {
	DX float64
	DY float64
}

// ShapeFromRect drops everything but position and size.
func ShapeFromRect(r Rect) Shape {
	return Shape{X: r.Left, Y: r.Top, Width: r.Width, Height: r.Height}
}

// InvertYCoordinate flips y inside a container of the given height. An unknown
// (non-positive) height leaves the point untouched.
func InvertYCoordinate(p Point, height float64) Point {
	if height > 0 {
		return Point{X: p.X, Y: height - p.Y}
	}
	return p
}

// RotatePoint rotates p counter-clockwise about the origin. No axis correction
// is applied for Y-down screen space.
func RotatePoint(p Point, angleDegrees float64) Point {
	theta := angleDegrees * math.Pi / 180
	sin, cos := math.Sincos(theta)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// TranslatePoint offsets p by t.
func TranslatePoint(p Point, t Translation) Point {
	return Point{X: p.X + t.DX, Y: p.Y + t.DY}
}

// NormalizeRotation maps any rotation in degrees into [0, 360).
func NormalizeRotation(deg int) int {
	return ((deg % 360) + 360) % 360
}

// GetRotatedLocation maps a point from unrotated image space into the space of
// the image displayed at rotation and scale. Only axis-aligned rotations are
// supported; anything else is treated as no rotation.
func GetRotatedLocation(x, y float64, rotation int, dims Dimensions, scale float64) (float64, float64) {
	w, h := dims.Width*scale, dims.Height*scale
	switch NormalizeRotation(rotation) {
	case 270:
		return y, h - x
	case 180:
		return w - x, h - y
	case 90:
		return w - y, x
	default:
		return x, y
	}
}

// GetLocationWithoutRotation is the inverse of GetRotatedLocation for the same
// rotation, dimensions and scale.
func GetLocationWithoutRotation(x, y float64, rotation int, dims Dimensions, scale float64) (float64, float64) {
	w, h := dims.Width*scale, dims.Height*scale
	switch NormalizeRotation(rotation) {
	case 270:
		return h - y, x
	case 180:
		return w - x, h - y
	case 90:
		return y, w - x
	default:
		return x, y
	}
}

// PointLocation is a saved annotation point together with the unscaled image
// dimensions recorded when it was saved.
type PointLocation struct {
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Dimensions Dimensions `json:"dimensions"`
}

// Container describes the image as it is currently rendered. Width and Height
// are rendered (scaled, unrotated) pixels.
type Container struct {
	Width    float64
	Height   float64
	Scale    float64
	Rotation int
	PaddingX float64
	PaddingY float64
}

// unscaled returns the current image size with zoom removed.
func (c Container) unscaled() Dimensions {
	scale := c.Scale
	if scale <= 0 {
		scale = 1
	}
	return Dimensions{Width: c.Width / scale, Height: c.Height / scale}
}

// GetBrowserCoordinatesFromLocation converts a saved location into pixel
// coordinates relative to the container.
func GetBrowserCoordinatesFromLocation(loc PointLocation, c Container) (float64, float64) {
	scale := c.Scale
	if scale <= 0 {
		scale = 1
	}
	current := c.unscaled()

	x, y := loc.X, loc.Y
	saved := loc.Dimensions
	if saved.Width > 0 && saved.Height > 0 && saved != current {
		x *= current.Width / saved.Width
		y *= current.Height / saved.Height
	}

	x, y = x*scale, y*scale
	x, y = GetRotatedLocation(x, y, c.Rotation, current, scale)
	return x + c.PaddingX, y + c.PaddingY
}

// GetLocationFromBrowserCoordinates is the inverse of
// GetBrowserCoordinatesFromLocation: it records a pixel position as a saved
// location against the current unscaled dimensions.
func GetLocationFromBrowserCoordinates(x, y float64, c Container) PointLocation {
	scale := c.Scale
	if scale <= 0 {
		scale = 1
	}
	current := c.unscaled()
	x, y = GetLocationWithoutRotation(x-c.PaddingX, y-c.PaddingY, c.Rotation, current, scale)
	return PointLocation{X: x / scale, Y: y / scale, Dimensions: current}
}

// RelativeShape expresses shape as percentages of container.
func RelativeShape(shape, container Shape) Shape {
	pct := func(v, total float64) float64 {
		if total == 0 {
			return 0
		}
		return v / total * 100
	}
	out := Shape{
		X:      pct(shape.X-container.X, container.Width),
		Y:      pct(shape.Y-container.Y, container.Height),
		Width:  pct(shape.Width, container.Width),
		Height: pct(shape.Height, container.Height),
	}
	if shape.Path != nil {
		out.Path = make([]Point, len(shape.Path))
		for i, p := range shape.Path {
			out.Path[i] = Point{
				X: pct(p.X-container.X, container.Width),
				Y: pct(p.Y-container.Y, container.Height),
			}
		}
	}
	return out
}

// BoundingShape returns the smallest rectangle containing every point.
func BoundingShape(points []Point) Shape {
	if len(points) == 0 {
		return Shape{}
	}
	pts := make([]r2.Point, len(points))
	for i, p := range points {
		pts[i] = r2.Point{X: p.X, Y: p.Y}
	}
	r := r2.RectFromPoints(pts...)
	return Shape{X: r.X.Lo, Y: r.Y.Lo, Width: r.X.Length(), Height: r.Y.Length()}
}
