package paint

import "github.com/gogpu/paint/internal/geom"

// Point is a position in canvas space.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() geom.Vec2 {
	return geom.V(p.X, p.Y)
}

// Sample is one input event of a stroke. Pressure in (0,1] scales the dab
// diameter of the dabs laid down on the way to the sample; 0 means no
// pressure data and paints at full size.
type Sample struct {
	X, Y     float32
	Pressure float32
}

func (s Sample) vec() geom.Vec2 {
	return geom.V(s.X, s.Y)
}
