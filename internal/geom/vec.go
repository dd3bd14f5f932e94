package geom

import "github.com/chewxy/math32"

// Vec2 is a point or displacement in canvas space.
type Vec2 struct {
	X, Y float32
}

// V returns Vec2{x, y}.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul returns v scaled by k.
func (v Vec2) Mul(k float32) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float32 {
	return math32.Hypot(v.X, v.Y)
}

// Lerp returns v + (o-v)*t.
func (v Vec2) Lerp(o Vec2, t float32) Vec2 {
	return v.Add(o.Sub(v).Mul(t))
}

// Floor returns the integer pixel containing v.
func (v Vec2) Floor() (int, int) {
	return int(math32.Floor(v.X)), int(math32.Floor(v.Y))
}
