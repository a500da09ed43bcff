package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Boundary keeps body positions inside Box. With zero Restitution a clamp
// leaves the previous position alone, so the implied velocity shrinks. A
// positive Restitution reflects the clamped axis velocity scaled by it.
type Boundary struct {
	Box         r2.Box
	Restitution float64
}

func NewBoundary(box r2.Box, restitution float64) *Boundary {
	return &Boundary{Box: box, Restitution: restitution}
}

// Clamp moves b inside the box and reports whether it had to.
func (bd *Boundary) Clamp(b *dynamo.Body) bool {
	x, cx := clampAxis(b.Position.X, b.PrevPosition.X, bd.Box.Min.X, bd.Box.Max.X, bd.Restitution)
	y, cy := clampAxis(b.Position.Y, b.PrevPosition.Y, bd.Box.Min.Y, bd.Box.Max.Y, bd.Restitution)
	if cx {
		b.Position.X = x.pos
		b.PrevPosition.X = x.prev
	}
	if cy {
		b.Position.Y = y.pos
		b.PrevPosition.Y = y.prev
	}
	return cx || cy
}

func (bd *Boundary) ClampAll(bodies []*dynamo.Body) int {
	n := 0
	for _, b := range bodies {
		if bd.Clamp(b) {
			n++
		}
	}
	return n
}

type axis struct{ pos, prev float64 }

func clampAxis(pos, prev, lo, hi, e float64) (axis, bool) {
	var edge float64
	switch {
	case pos > hi:
		edge = hi
	case pos < lo:
		edge = lo
	default:
		return axis{pos, prev}, false
	}
	if e <= 0 {
		return axis{edge, prev}, true
	}
	v := pos - prev
	return axis{edge, edge + v*e}, true
}
