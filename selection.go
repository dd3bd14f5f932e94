package paint

import (
	"image"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/paint/internal/geom"
)

// Selection restricts brush, transform and float operations to a region.
//
// Containment is tested at pixel centers: pixel (x, y) is selected when
// Contains(x+0.5, y+0.5) is true. Bounds returns a pixel rectangle holding
// every selected pixel.
//
// The implementations are RectSelection, CircleSelection and LassoSelection.
type Selection interface {
	Contains(x, y float32) bool
	Bounds() image.Rectangle

	transformed(a geom.Affine) Selection
}

// RectSelection selects [Min.X, Max.X) x [Min.Y, Max.Y).
type RectSelection struct {
	Min, Max Point
}

// NewRectSelection returns the rectangle spanned by two corners in any order.
func NewRectSelection(x0, y0, x1, y1 float32) RectSelection {
	return RectSelection{
		Min: Pt(min(x0, x1), min(y0, y1)),
		Max: Pt(max(x0, x1), max(y0, y1)),
	}
}

// Contains reports whether (x, y) lies in the half-open rectangle.
func (r RectSelection) Contains(x, y float32) bool {
	return x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y
}

// Bounds returns the covering pixel rectangle.
func (r RectSelection) Bounds() image.Rectangle {
	return image.Rect(
		int(math32.Floor(r.Min.X)), int(math32.Floor(r.Min.Y)),
		int(math32.Ceil(r.Max.X)), int(math32.Ceil(r.Max.Y)),
	)
}

func (r RectSelection) transformed(a geom.Affine) Selection {
	if a.IsTranslation() {
		dx, dy := a.TransformPoint(0, 0)
		return RectSelection{
			Min: Pt(r.Min.X+float32(dx), r.Min.Y+float32(dy)),
			Max: Pt(r.Max.X+float32(dx), r.Max.Y+float32(dy)),
		}
	}
	corners := []Point{r.Min, Pt(r.Max.X, r.Min.Y), r.Max, Pt(r.Min.X, r.Max.Y)}
	return LassoSelection{Points: mapPoints(a, corners)}
}

// CircleSelection selects points within Radius of Center, boundary included.
type CircleSelection struct {
	Center Point
	Radius float32
}

// Contains reports whether |(x, y) - Center| <= Radius.
func (c CircleSelection) Contains(x, y float32) bool {
	return math32.Hypot(x-c.Center.X, y-c.Center.Y) <= c.Radius
}

// Bounds returns the covering pixel rectangle.
func (c CircleSelection) Bounds() image.Rectangle {
	if c.Radius < 0 {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math32.Floor(c.Center.X-c.Radius)), int(math32.Floor(c.Center.Y-c.Radius)),
		int(math32.Ceil(c.Center.X+c.Radius)), int(math32.Ceil(c.Center.Y+c.Radius)),
	)
}

func (c CircleSelection) transformed(a geom.Affine) Selection {
	x, y := a.TransformPoint(float64(c.Center.X), float64(c.Center.Y))
	// Non-uniform scales turn the circle into an ellipse; the area-preserving
	// radius is the closest circle.
	k := math.Sqrt(math.Abs(a.Determinant()))
	return CircleSelection{Center: Pt(float32(x), float32(y)), Radius: c.Radius * float32(k)}
}

// LassoSelection is a closed polygon through Points, filled with the
// even-odd rule. Fewer than three points select nothing.
type LassoSelection struct {
	Points []Point
}

// NewLassoSelection returns a lasso through pts. At least one point is
// required.
func NewLassoSelection(pts ...Point) (LassoSelection, error) {
	if len(pts) == 0 {
		return LassoSelection{}, ErrEmptySelection
	}
	return LassoSelection{Points: append([]Point(nil), pts...)}, nil
}

// Contains reports whether (x, y) is inside the polygon by the even-odd rule.
func (l LassoSelection) Contains(x, y float32) bool {
	n := len(l.Points)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := l.Points[i], l.Points[j]
		if (pi.Y > y) != (pj.Y > y) {
			xCross := pi.X + (y-pi.Y)*(pj.X-pi.X)/(pj.Y-pi.Y)
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Bounds returns the covering pixel rectangle of the polygon.
func (l LassoSelection) Bounds() image.Rectangle {
	if len(l.Points) < 3 {
		return image.Rectangle{}
	}
	minX, minY := l.Points[0].X, l.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range l.Points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return image.Rect(
		int(math32.Floor(minX)), int(math32.Floor(minY)),
		int(math32.Ceil(maxX)), int(math32.Ceil(maxY)),
	)
}

func (l LassoSelection) transformed(a geom.Affine) Selection {
	return LassoSelection{Points: mapPoints(a, l.Points)}
}

func mapPoints(a geom.Affine, pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		x, y := a.TransformPoint(float64(p.X), float64(p.Y))
		out[i] = Pt(float32(x), float32(y))
	}
	return out
}

// selectedPixel tests the center of pixel (x, y). A nil selection selects
// everything.
func selectedPixel(sel Selection, x, y int) bool {
	return sel == nil || sel.Contains(float32(x)+0.5, float32(y)+0.5)
}

// SetSelection makes sel the active selection for subsequent strokes.
// Passing nil clears it.
func (c *Canvas) SetSelection(sel Selection) {
	c.selection = sel
}

// ClearSelection removes the active selection.
func (c *Canvas) ClearSelection() {
	c.selection = nil
}

// Selection returns the active selection, or nil.
func (c *Canvas) Selection() Selection {
	return c.selection
}
