package paint

import (
	"slices"

	"github.com/chewxy/math32"
)

// CurvePoint is a control point of a softness curve in [0,1]².
type CurvePoint struct {
	X, Y float32
}

// Curve maps normalized distance from the dab center to coverage.
//
// It is a piecewise cubic Hermite spline through Points, which must be
// sorted by X. Tangents follow the Fritsch-Butland rule, so the curve is
// monotone wherever the points are, and each segment is clamped to the
// range of its end points. A curve through points in [0,1]² therefore
// stays in [0,1].
type Curve struct {
	Points []CurvePoint
}

// NewCurve returns a curve through pts, sorted by X.
func NewCurve(pts ...CurvePoint) Curve {
	p := slices.Clone(pts)
	slices.SortStableFunc(p, func(a, b CurvePoint) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})
	return Curve{Points: p}
}

// DefaultCurve falls linearly from full coverage at the center to none at
// the rim.
func DefaultCurve() Curve {
	return Curve{Points: []CurvePoint{{0, 1}, {1, 0}}}
}

// Eval evaluates the curve at t, clamped to [0,1]. An empty curve is 0.
func (c Curve) Eval(t float32) float32 {
	pts := c.Points
	n := len(pts)
	if n == 0 {
		return 0
	}
	t = min(max(t, 0), 1)
	if n == 1 || t <= pts[0].X {
		return pts[0].Y
	}
	if t >= pts[n-1].X {
		return pts[n-1].Y
	}

	i := 0
	for i < n-2 && t > pts[i+1].X {
		i++
	}
	p0, p1 := pts[i], pts[i+1]
	dx := p1.X - p0.X
	if math32.Abs(dx) < 1e-6 {
		return p0.Y
	}

	d := (p1.Y - p0.Y) / dx
	m0, m1 := d, d
	if i > 0 {
		m0 = tangent(secant(pts[i-1], p0), d, p0.X-pts[i-1].X, dx)
	}
	if i < n-2 {
		m1 = tangent(d, secant(p1, pts[i+2]), dx, pts[i+2].X-p1.X)
	}

	u := (t - p0.X) / dx
	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	y := p0.Y*h00 + m0*dx*h10 + p1.Y*h01 + m1*dx*h11

	lo, hi := min(p0.Y, p1.Y), max(p0.Y, p1.Y)
	return min(max(y, lo), hi)
}

func secant(a, b CurvePoint) float32 {
	dx := b.X - a.X
	if math32.Abs(dx) < 1e-6 {
		return 0
	}
	return (b.Y - a.Y) / dx
}

// tangent is the weighted harmonic mean of the neighbouring secants, or 0
// at a local extremum.
func tangent(d0, d1, h0, h1 float32) float32 {
	if d0*d1 <= 0 {
		return 0
	}
	return 3 * (h0 + h1) / ((2*h1+h0)/d0 + (h1+2*h0)/d1)
}
