package physics

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/spatial"
)

func TestGravity_BinaryPair(t *testing.T) {
	const g = 6.674e-11
	a := dynamo.NewBody(r2.Vec{}, 1e12, 1)
	b := dynamo.NewBody(r2.Vec{X: 100}, 1e12, 1)

	if mag := Magnitude(a, b, g); math.Abs(mag-6.674e9)/6.674e9 > 1e-12 {
		t.Errorf("force magnitude = %v, want 6.674e9", mag)
	}

	NewGravity(g, spatial.DefaultTheta).BruteForce([]*dynamo.Body{a, b})

	if math.Abs(a.Acceleration.X-6.674e-3) > 1e-15 || a.Acceleration.Y != 0 {
		t.Errorf("a acceleration = %v, want {6.674e-3 0}", a.Acceleration)
	}
	if math.Abs(b.Acceleration.X+6.674e-3) > 1e-15 || b.Acceleration.Y != 0 {
		t.Errorf("b acceleration = %v, want {-6.674e-3 0}", b.Acceleration)
	}
}

func TestPairForce_Coincident(t *testing.T) {
	a := dynamo.NewBody(r2.Vec{X: 3, Y: 3}, 5, 1)
	b := dynamo.NewBody(r2.Vec{X: 3, Y: 3}, 5, 1)
	if f := PairForce(a, b, 1); f != (r2.Vec{}) {
		t.Errorf("PairForce at zero distance = %v, want zero", f)
	}
}

func TestPairForce_Symmetric(t *testing.T) {
	a := dynamo.NewBody(r2.Vec{X: 1, Y: 2}, 3, 1)
	b := dynamo.NewBody(r2.Vec{X: -4, Y: 7}, 9, 1)
	fab := PairForce(a, b, 2)
	fba := PairForce(b, a, 2)
	if r2.Norm(r2.Add(fab, fba)) > 1e-12 {
		t.Errorf("PairForce not antisymmetric: %v vs %v", fab, fba)
	}
}

func scatter(seed int64, n int) []*dynamo.Body {
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*dynamo.Body, n)
	for i := range bodies {
		p := r2.Vec{X: rng.Float64() * 200, Y: rng.Float64() * 200}
		bodies[i] = dynamo.NewBody(p, 1+rng.Float64()*9, 1)
	}
	return bodies
}

func accelerations(bodies []*dynamo.Body) []r2.Vec {
	out := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		out[i] = b.Acceleration
		b.Acceleration = r2.Vec{}
	}
	return out
}

func TestGravity_PathsAgree(t *testing.T) {
	bodies := scatter(4, 150)
	grav := NewGravity(1, 0)
	pool := compute.NewPool(4)
	defer pool.Shutdown(time.Second)

	grav.BruteForce(bodies)
	want := accelerations(bodies)

	if err := grav.BruteForceParallel(context.Background(), bodies, pool); err != nil {
		t.Fatal(err)
	}
	parallel := accelerations(bodies)

	tree := spatial.NewTree()
	tree.Build(bodies, r2.Box{Max: r2.Vec{X: 200, Y: 200}})
	grav.WithTree(bodies, tree)
	viaTree := accelerations(bodies)

	if err := grav.WithTreeParallel(context.Background(), bodies, tree, pool); err != nil {
		t.Fatal(err)
	}
	viaTreeParallel := accelerations(bodies)

	for i := range want {
		tol := 1e-9 * (1 + r2.Norm(want[i]))
		for name, got := range map[string]r2.Vec{
			"parallel":      parallel[i],
			"tree":          viaTree[i],
			"tree parallel": viaTreeParallel[i],
		} {
			if r2.Norm(r2.Sub(got, want[i])) > tol {
				t.Fatalf("%s: body %d acceleration %v, brute force %v", name, i, got, want[i])
			}
		}
	}
}

func TestGravity_TreeApproximation(t *testing.T) {
	bodies := scatter(8, 400)
	grav := NewGravity(1, spatial.DefaultTheta)

	grav.BruteForce(bodies)
	want := accelerations(bodies)

	tree := spatial.NewTree()
	tree.Build(bodies, r2.Box{Max: r2.Vec{X: 200, Y: 200}})
	grav.WithTree(bodies, tree)
	got := accelerations(bodies)

	var errSum, magSum float64
	for i := range want {
		errSum += r2.Norm(r2.Sub(got[i], want[i]))
		magSum += r2.Norm(want[i])
	}
	if errSum/magSum > 0.05 {
		t.Errorf("aggregate relative error %.4f", errSum/magSum)
	}
}

func TestApplyField(t *testing.T) {
	bodies := []*dynamo.Body{
		dynamo.NewBody(r2.Vec{}, 1, 1),
		dynamo.NewBody(r2.Vec{X: 5}, 50, 1),
	}
	ApplyField(bodies, r2.Vec{Y: 150.81})
	for i, b := range bodies {
		if b.Acceleration != (r2.Vec{Y: 150.81}) {
			t.Errorf("body %d acceleration = %v", i, b.Acceleration)
		}
	}
}

func BenchmarkGravity(b *testing.B) {
	bodies := scatter(1, 2000)
	tree := spatial.NewTree()
	bounds := r2.Box{Max: r2.Vec{X: 200, Y: 200}}

	b.Run("BruteForce", func(b *testing.B) {
		grav := NewGravity(1, 0.5)
		for i := 0; i < b.N; i++ {
			grav.BruteForce(bodies)
		}
	})
	b.Run("Tree", func(b *testing.B) {
		grav := NewGravity(1, 0.5)
		for i := 0; i < b.N; i++ {
			tree.Build(bodies, bounds)
			grav.WithTree(bodies, tree)
		}
	})
}
