package physics

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/spatial"
)

// DefaultResponse is the fraction of the overlap removed per pass, times two.
const DefaultResponse = 0.75

// Strategy selects the broad phase used to find colliding pairs.
type Strategy int

const (
	BruteForce Strategy = iota
	Grid
	Tree
)

var strategyNames = [...]string{
	BruteForce: "brute-force",
	Grid:       "grid",
	Tree:       "tree",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{BruteForce, Grid, Tree}
}

// ParseStrategy accepts a strategy name, case-insensitively. "brute" and
// "quadtree" are accepted as aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brute-force", "bruteforce", "brute":
		return BruteForce, nil
	case "grid", "spatial-hash":
		return Grid, nil
	case "tree", "quadtree":
		return Tree, nil
	}
	return 0, dynamo.Invalid("collision strategy", s)
}

// Resolver separates overlapping bodies by moving each along the contact
// normal in proportion to the other's radius.
type Resolver struct {
	Response float64
}

func NewResolver(response float64) *Resolver {
	return &Resolver{Response: response}
}

// Resolve separates a and b if they overlap and reports whether they did.
func (r *Resolver) Resolve(a, b *dynamo.Body) bool {
	v := r2.Sub(a.Position, b.Position)
	dist2 := r2.Norm2(v)
	minDist := a.Radius + b.Radius
	if dist2 >= minDist*minDist {
		return false
	}

	dist := r2.Norm(v)
	n := r2.Vec{X: 1}
	if dist > 0 {
		n = r2.Scale(1/dist, v)
	}
	delta := 0.5 * r.Response * (dist - minDist)
	a.Position = r2.Sub(a.Position, r2.Scale(delta*b.Radius/minDist, n))
	b.Position = r2.Add(b.Position, r2.Scale(delta*a.Radius/minDist, n))
	return true
}

// BruteForce tests every unordered pair and returns the number resolved.
func (r *Resolver) BruteForce(bodies []*dynamo.Body) int {
	n := 0
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			if r.Resolve(a, b) {
				n++
			}
		}
	}
	return n
}

// WithGrid resolves the pairs sharing a bucket of grid, which must have
// been built from bodies.
func (r *Resolver) WithGrid(bodies []*dynamo.Body, grid *spatial.Grid) int {
	n := 0
	grid.ForEachPair(func(i, j int32) {
		if r.Resolve(bodies[i], bodies[j]) {
			n++
		}
	})
	return n
}

func (r *Resolver) WithGridParallel(ctx context.Context, bodies []*dynamo.Body, grid *spatial.Grid, pool *compute.Pool) (int, error) {
	var n atomic.Int64
	err := grid.ForEachPairParallel(ctx, pool, func(i, j int32) {
		if r.Resolve(bodies[i], bodies[j]) {
			n.Add(1)
		}
	})
	return int(n.Load()), err
}

// WithTree resolves each body against its tree candidates. A pair is
// resolved only from its lower index so it is handled once per pass.
func (r *Resolver) WithTree(bodies []*dynamo.Body, tree *spatial.Tree) int {
	buf := spatial.GetCandidates()
	defer spatial.PutCandidates(buf)

	n := 0
	for i := range bodies {
		*buf = tree.Candidates(int32(i), (*buf)[:0])
		for _, j := range *buf {
			if int(j) > i && r.Resolve(bodies[i], bodies[j]) {
				n++
			}
		}
	}
	return n
}
