package spatial

import "gonum.org/v1/gonum/spatial/r2"

func center(b r2.Box) r2.Vec {
	return r2.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// width is the longer side of b.
func width(b r2.Box) float64 {
	return max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
}

func contains(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// intersectsCircle reports whether the closed box b and the closed disc of
// radius r centered at c share a point.
func intersectsCircle(b r2.Box, c r2.Vec, r float64) bool {
	nx := min(max(c.X, b.Min.X), b.Max.X)
	ny := min(max(c.Y, b.Min.Y), b.Max.Y)
	dx, dy := c.X-nx, c.Y-ny
	return dx*dx+dy*dy <= r*r
}

// extend grows b to cover p.
func extend(b r2.Box, p r2.Vec) r2.Box {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	return b
}
