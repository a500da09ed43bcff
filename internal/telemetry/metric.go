package telemetry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Metric samples one scalar from a frame view. Value is NaN until the first
// successful observation, or when the observed body no longer exists.
type Metric interface {
	Name() string
	Observe(v dynamo.View)
	Value() float64
	Reset()
}

type gauge struct {
	name  string
	value float64
	read  func(v dynamo.View) (float64, bool)
}

func newGauge(name string, read func(v dynamo.View) (float64, bool)) *gauge {
	return &gauge{name: name, value: math.NaN(), read: read}
}

func (g *gauge) Name() string   { return g.name }
func (g *gauge) Value() float64 { return g.value }
func (g *gauge) Reset()         { g.value = math.NaN() }

func (g *gauge) Observe(v dynamo.View) {
	if x, ok := g.read(v); ok {
		g.value = x
		return
	}
	g.value = math.NaN()
}

func ElapsedTime() Metric {
	return newGauge("elapsed", func(v dynamo.View) (float64, bool) {
		return v.Elapsed(), true
	})
}

func PopulationSize() Metric {
	return newGauge("bodies", func(v dynamo.View) (float64, bool) {
		return float64(v.Len()), true
	})
}

// BodyAcceleration is the magnitude of the acceleration body i received in
// its last integration.
func BodyAcceleration(i int) Metric {
	return newGauge(fmt.Sprintf("accel_%d", i), func(v dynamo.View) (float64, bool) {
		b, ok := v.Body(i)
		return r2.Norm(b.Applied), ok
	})
}

func BodyVelocity(i int) Metric {
	return newGauge(fmt.Sprintf("speed_%d", i), func(v dynamo.View) (float64, bool) {
		b, ok := v.Body(i)
		return r2.Norm(b.Velocity(v.StepDt())), ok
	})
}

// BodyPosition is the distance of body i from the world origin.
func BodyPosition(i int) Metric {
	return newGauge(fmt.Sprintf("pos_%d", i), func(v dynamo.View) (float64, bool) {
		b, ok := v.Body(i)
		return r2.Norm(b.Position), ok
	})
}

func PairSeparation(i, j int) Metric {
	return newGauge(fmt.Sprintf("sep_%d_%d", i, j), func(v dynamo.View) (float64, bool) {
		a, okA := v.Body(i)
		b, okB := v.Body(j)
		return r2.Norm(r2.Sub(a.Position, b.Position)), okA && okB
	})
}

// PairForce is the magnitude of the mutual attraction of bodies i and j.
func PairForce(i, j int) Metric {
	return newGauge(fmt.Sprintf("force_%d_%d", i, j), func(v dynamo.View) (float64, bool) {
		a, okA := v.Body(i)
		b, okB := v.Body(j)
		if !okA || !okB {
			return 0, false
		}
		f := dynamo.Attraction(v.Gravitation(), a.Position, a.Mass, b.Position, b.Mass)
		return r2.Norm(f), true
	})
}

// MeanSpeed averages speed over the whole population.
func MeanSpeed() Metric {
	return newGauge("mean_speed", func(v dynamo.View) (float64, bool) {
		speeds := collect(v, func(b dynamo.Body) float64 { return r2.Norm(b.Velocity(v.StepDt())) })
		if len(speeds) == 0 {
			return 0, false
		}
		return Summarize(speeds).Mean, true
	})
}

// MaxForce is the largest net force magnitude in the population.
func MaxForce() Metric {
	return newGauge("max_force", func(v dynamo.View) (float64, bool) {
		forces := collect(v, func(b dynamo.Body) float64 { return r2.Norm(b.Force()) })
		if len(forces) == 0 {
			return 0, false
		}
		return Summarize(forces).Max, true
	})
}

func collect(v dynamo.View, f func(b dynamo.Body) float64) []float64 {
	out := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if b, ok := v.Body(i); ok {
			out = append(out, f(b))
		}
	}
	return out
}
