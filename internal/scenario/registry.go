package scenario

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/sim"
)

// Seeder adds up to n bodies to s and returns how many it added.
type Seeder func(s *sim.Simulator, n int, rng *rand.Rand) (int, error)

type Registry struct {
	seeders map[string]Seeder
	spec    BodySpec
}

type RegistryOption func(*Registry)

// WithBodySpec sets the mass and size distribution of the random scenario.
func WithBodySpec(spec BodySpec) RegistryOption {
	return func(r *Registry) { r.spec = spec }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{seeders: make(map[string]Seeder), spec: DefaultBodySpec()}
	for _, opt := range opts {
		opt(r)
	}
	r.Register("binary", seedBinary)
	r.Register("galaxy", seedGalaxy)
	r.Register("rain", seedRain)
	r.Register("random", r.seedRandom)
	r.Register("streams", func(*sim.Simulator, int, *rand.Rand) (int, error) { return 0, nil })
	return r
}

func (r *Registry) Register(name string, fn Seeder) {
	r.seeders[name] = fn
}

// Seed populates s with the named scenario using a deterministic source.
func (r *Registry) Seed(name string, s *sim.Simulator, n int, seed int64) (int, error) {
	fn, ok := r.seeders[name]
	if !ok {
		return 0, dynamo.Invalid("scenario", name)
	}
	if n < 0 {
		return 0, dynamo.Invalid("bodies", n)
	}
	return fn(s, n, rand.New(rand.NewSource(seed)))
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.seeders))
	for name := range r.seeders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func center(b r2.Box) r2.Vec {
	return r2.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

const (
	binaryMass       = 1e12
	binaryRadius     = 10.0
	binarySeparation = 100.0
)

// seedBinary places two equal masses on a circular mutual orbit about the
// box center. n is ignored.
func seedBinary(s *sim.Simulator, _ int, _ *rand.Rand) (int, error) {
	cfg := s.Config()
	c := center(cfg.Bounds())
	half := r2.Vec{X: binarySeparation / 2}
	v := math.Sqrt(cfg.G * binaryMass / (2 * binarySeparation))

	added := 0
	for k, sign := range []float64{-1, 1} {
		b := dynamo.NewBody(r2.Add(c, r2.Scale(sign, half)), binaryMass, binaryRadius)
		b.ColorTag = k
		b.SetVelocity(r2.Vec{Y: sign * v}, s.StepDt())
		ok, err := s.AddBody(b)
		if err != nil || !ok {
			return added, err
		}
		added++
	}
	return added, nil
}

const (
	galaxyCoreRadius = 8.0
	galaxyStarMass   = 1.0
	galaxyCoreFactor = 50.0
)

// seedGalaxy puts a heavy core at the box center and n-1 light bodies on a
// disk around it with circular velocities about the core.
func seedGalaxy(s *sim.Simulator, n int, rng *rand.Rand) (int, error) {
	if n == 0 {
		return 0, nil
	}
	cfg := s.Config()
	box := cfg.Bounds()
	c := center(box)
	outer := 0.45 * math.Min(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)
	inner := 3 * galaxyCoreRadius
	coreMass := galaxyCoreFactor * float64(n)

	added := 0
	ok, err := s.AddBody(dynamo.NewBody(c, coreMass, galaxyCoreRadius))
	if err != nil || !ok {
		return added, err
	}
	added++

	for i := 1; i < n; i++ {
		r := inner + (outer-inner)*math.Sqrt(rng.Float64())
		a := rng.Float64() * 2 * math.Pi
		dir := r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
		b := dynamo.NewBody(r2.Add(c, r2.Scale(r, dir)), galaxyStarMass*(1+rng.Float64()), 1.5+rng.Float64())
		b.ColorTag = int(4 * (r - inner) / (outer - inner + 1e-9))
		v := math.Sqrt(cfg.G * coreMass / r)
		b.SetVelocity(r2.Scale(v, r2.Vec{X: -dir.Y, Y: dir.X}), s.StepDt())

		ok, err := s.AddBody(b)
		if err != nil {
			return added, err
		}
		if !ok {
			break
		}
		added++
	}
	return added, nil
}

const (
	rainRadius  = 4.0
	rainMass    = 5.0
	rainSpacing = 2.5 * rainRadius
)

// seedRain lays n resting bodies on a jittered lattice from the top of the
// box. Bodies that would fall outside the box are not placed.
func seedRain(s *sim.Simulator, n int, rng *rand.Rand) (int, error) {
	box := s.Config().Bounds()
	cols := int((box.Max.X - box.Min.X - rainSpacing) / rainSpacing)
	if cols < 1 {
		return 0, nil
	}

	added := 0
	for i := 0; i < n; i++ {
		row, col := i/cols, i%cols
		p := r2.Vec{
			X: box.Min.X + rainSpacing*float64(col+1) + (rng.Float64()-0.5),
			Y: box.Min.Y + rainSpacing*float64(row+1) + (rng.Float64()-0.5),
		}
		if p.Y > box.Max.Y-rainRadius {
			break
		}
		b := dynamo.NewBody(p, rainMass, rainRadius)
		b.ColorTag = row % 3
		ok, err := s.AddBody(b)
		if err != nil {
			return added, err
		}
		if !ok {
			break
		}
		added++
	}
	return added, nil
}

// BodySpec draws masses and diameters uniformly from mean ± variance.
type BodySpec struct {
	Mass             float64
	MassVariance     float64
	Diameter         float64
	DiameterVariance float64
}

func DefaultBodySpec() BodySpec {
	return BodySpec{Mass: 10, MassVariance: 1, Diameter: 10, DiameterVariance: 1}
}

// Validate rejects a spec that could draw a non-positive mass or diameter.
func (b BodySpec) Validate() error {
	switch {
	case b.MassVariance < 0:
		return dynamo.Invalid("mass variance", b.MassVariance)
	case !(b.Mass-b.MassVariance > 0):
		return dynamo.Invalid("mass", b.Mass)
	case b.DiameterVariance < 0:
		return dynamo.Invalid("diameter variance", b.DiameterVariance)
	case !(b.Diameter-b.DiameterVariance > 0):
		return dynamo.Invalid("diameter", b.Diameter)
	}
	return nil
}

func spread(rng *rand.Rand, mean, variance float64) float64 {
	return mean + variance*(2*rng.Float64()-1)
}

// seedRandom scatters n resting bodies uniformly over the box, inset so the
// largest possible body starts inside it.
func (r *Registry) seedRandom(s *sim.Simulator, n int, rng *rand.Rand) (int, error) {
	if err := r.spec.Validate(); err != nil {
		return 0, err
	}
	box := s.Config().Bounds()
	inset := (r.spec.Diameter + r.spec.DiameterVariance) / 2
	w := box.Max.X - box.Min.X - 2*inset
	h := box.Max.Y - box.Min.Y - 2*inset
	if w <= 0 || h <= 0 {
		return 0, dynamo.Invalid("diameter", r.spec.Diameter)
	}

	added := 0
	for i := 0; i < n; i++ {
		p := r2.Vec{
			X: box.Min.X + inset + w*rng.Float64(),
			Y: box.Min.Y + inset + h*rng.Float64(),
		}
		mass := spread(rng, r.spec.Mass, r.spec.MassVariance)
		radius := spread(rng, r.spec.Diameter, r.spec.DiameterVariance) / 2
		b := dynamo.NewBody(p, mass, radius)
		b.ColorTag = i % 4
		ok, err := s.AddBody(b)
		if err != nil {
			return added, err
		}
		if !ok {
			break
		}
		added++
	}
	return added, nil
}
