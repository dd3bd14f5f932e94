// Package geom provides the small amount of plane geometry the painting core
// needs: affine maps for layer transforms, float32 vectors for stroke
// interpolation and integer line stepping.
package geom

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// Affine represents a 2D affine transformation matrix.
//
//	| a  b  c |
//	| d  e  f |
//	| 0  0  1 |
type Affine struct {
	a, b, c float64 // x' = ax + by + c
	d, e, f float64 // y' = dx + ey + f
}

// Identity returns the identity transformation.
func Identity() Affine {
	return Affine{a: 1, e: 1}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{a: 1, c: tx, e: 1, f: ty}
}

// Scale returns a scaling by (sx, sy) around the origin.
// Negative values flip.
func Scale(sx, sy float64) Affine {
	return Affine{a: sx, e: sy}
}

// Rotate returns a rotation by angle radians around the origin. With the y
// axis pointing down, positive angles turn clockwise on screen.
func Rotate(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		a: cos, b: -sin,
		d: sin, e: cos,
	}
}

// Multiply returns a*other, which applies other first.
func (a Affine) Multiply(other Affine) Affine {
	return Affine{
		a: a.a*other.a + a.b*other.d,
		b: a.a*other.b + a.b*other.e,
		c: a.a*other.c + a.b*other.f + a.c,
		d: a.d*other.a + a.e*other.d,
		e: a.d*other.b + a.e*other.e,
		f: a.d*other.c + a.e*other.f + a.f,
	}
}

// Determinant returns the determinant of the linear part.
func (a Affine) Determinant() float64 {
	return a.a*a.e - a.b*a.d
}

// Invert returns the inverse transformation.
// Returns false if the matrix is singular.
func (a Affine) Invert() (Affine, bool) {
	det := a.Determinant()
	if math.Abs(det) < 1e-10 {
		return Affine{}, false
	}

	invDet := 1.0 / det
	return Affine{
		a: a.e * invDet,
		b: -a.b * invDet,
		c: (a.b*a.f - a.c*a.e) * invDet,
		d: -a.d * invDet,
		e: a.a * invDet,
		f: (a.c*a.d - a.a*a.f) * invDet,
	}, true
}

// TransformPoint applies the transformation to (x, y).
func (a Affine) TransformPoint(x, y float64) (float64, float64) {
	return a.a*x + a.b*y + a.c, a.d*x + a.e*y + a.f
}

// IsTranslation reports whether the linear part is the identity.
func (a Affine) IsTranslation() bool {
	return a.a == 1 && a.b == 0 && a.d == 0 && a.e == 1
}

// Aff3 exports the matrix in the row-major layout used by
// golang.org/x/image/draw.Transformer.
func (a Affine) Aff3() f64.Aff3 {
	return f64.Aff3{a.a, a.b, a.c, a.d, a.e, a.f}
}

// Pivoted builds scale, then rotation, about pivot followed by a translation
// by offset:
//
//	p' = R(angle) * S(scale) * (p - pivot) + pivot + offset
func Pivoted(offsetX, offsetY, angle, scaleX, scaleY, pivotX, pivotY float64) Affine {
	return Translate(pivotX+offsetX, pivotY+offsetY).
		Multiply(Rotate(angle)).
		Multiply(Scale(scaleX, scaleY)).
		Multiply(Translate(-pivotX, -pivotY))
}

// BoundsOf returns the integer pixel rectangle covering r after mapping its
// four corners through a. r is treated as a set of unit pixels, so the
// corners used are r.Min and r.Max.
func (a Affine) BoundsOf(r image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	corners := [4][2]float64{
		{float64(r.Min.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Min.Y)},
		{float64(r.Min.X), float64(r.Max.Y)},
		{float64(r.Max.X), float64(r.Max.Y)},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		x, y := a.TransformPoint(p[0], p[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(
		int(math.Floor(snap(minX))), int(math.Floor(snap(minY))),
		int(math.Ceil(snap(maxX))), int(math.Ceil(snap(maxY))),
	)
}

// snap rounds values within float noise of an integer, so that exact
// quarter turns and integer offsets do not grow the bounds by a pixel.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		return r
	}
	return v
}
