package geom

import "image"

// Line returns the pixels of the Bresenham line from p0 to p1, both
// included, in order from p0.
func Line(p0, p1 image.Point) []image.Point {
	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}

	pts := make([]image.Point, 0, max(dx, -dy)+1)
	x, y := p0.X, p0.Y
	err := dx + dy
	for {
		pts = append(pts, image.Pt(x, y))
		if x == p1.X && y == p1.Y {
			return pts
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
