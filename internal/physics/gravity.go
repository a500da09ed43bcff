package physics

import (
	"context"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/spatial"
)

// DefaultG is the gravitational constant in SI units.
const DefaultG = 6.67343e-11

// PairForce is the force on a exerted by b.
func PairForce(a, b *dynamo.Body, g float64) r2.Vec {
	return dynamo.Attraction(g, a.Position, a.Mass, b.Position, b.Mass)
}

// Magnitude is |PairForce(a, b, g)|.
func Magnitude(a, b *dynamo.Body, g float64) float64 {
	return r2.Norm(PairForce(a, b, g))
}

// Gravity accumulates mutual attraction into body accelerations.
type Gravity struct {
	G     float64
	Theta float64
}

func NewGravity(g, theta float64) *Gravity {
	return &Gravity{G: g, Theta: theta}
}

// BruteForce visits every unordered pair once.
func (gr *Gravity) BruteForce(bodies []*dynamo.Body) {
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			f := PairForce(a, b, gr.G)
			a.Accelerate(r2.Scale(1/a.Mass, f))
			b.Accelerate(r2.Scale(-1/b.Mass, f))
		}
	}
}

// BruteForceParallel computes the full row for each body on pool. Each task
// writes only the bodies in its own range.
func (gr *Gravity) BruteForceParallel(ctx context.Context, bodies []*dynamo.Body, pool *compute.Pool) error {
	return pool.Range(ctx, len(bodies), func(start, end int) {
		for _, a := range bodies[start:end] {
			var f r2.Vec
			for _, b := range bodies {
				if a != b {
					f = r2.Add(f, PairForce(a, b, gr.G))
				}
			}
			a.Accelerate(r2.Scale(1/a.Mass, f))
		}
	})
}

// WithTree approximates the force on every body from tree.
func (gr *Gravity) WithTree(bodies []*dynamo.Body, tree *spatial.Tree) {
	for _, b := range bodies {
		b.Accelerate(r2.Scale(1/b.Mass, tree.ForceOn(b, gr.Theta, gr.G)))
	}
}

// WithTreeParallel is WithTree fanned out by body range. The tree is only
// read.
func (gr *Gravity) WithTreeParallel(ctx context.Context, bodies []*dynamo.Body, tree *spatial.Tree, pool *compute.Pool) error {
	return pool.Range(ctx, len(bodies), func(start, end int) {
		gr.WithTree(bodies[start:end], tree)
	})
}

// ApplyField adds the uniform acceleration field to every body.
func ApplyField(bodies []*dynamo.Body, field r2.Vec) {
	if field == (r2.Vec{}) {
		return
	}
	for _, b := range bodies {
		b.Accelerate(field)
	}
}
