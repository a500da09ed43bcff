package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Attraction returns the gravitational force on a point mass ma at pa
// exerted by mb at pb. Coincident points yield the zero vector.
func Attraction(g float64, pa r2.Vec, ma float64, pb r2.Vec, mb float64) r2.Vec {
	v := r2.Sub(pb, pa)
	d2 := v.X*v.X + v.Y*v.Y
	if d2 == 0 {
		return r2.Vec{}
	}
	return r2.Scale(g*ma*mb/(d2*math.Sqrt(d2)), v)
}
