package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a circular point mass. Its velocity is implied by the previous
// position, which is always initialised at construction.
type Body struct {
	Position     r2.Vec
	PrevPosition r2.Vec
	// Acceleration is accumulated during a step and cleared by the integrator.
	Acceleration r2.Vec
	// Applied holds the acceleration consumed by the most recent integration.
	Applied  r2.Vec
	Mass     float64
	Radius   float64
	ColorTag int
}

// NewBody returns a body at rest at pos.
func NewBody(pos r2.Vec, mass, radius float64) *Body {
	return &Body{
		Position:     pos,
		PrevPosition: pos,
		Mass:         mass,
		Radius:       radius,
	}
}

func (b *Body) Validate() error {
	if !(b.Mass > 0) || !(b.Radius > 0) {
		return ErrInvalidBody
	}
	return nil
}

// Accelerate adds a to the step accumulator.
func (b *Body) Accelerate(a r2.Vec) {
	b.Acceleration = r2.Add(b.Acceleration, a)
}

// Displacement is the movement over the last step.
func (b *Body) Displacement() r2.Vec {
	return r2.Sub(b.Position, b.PrevPosition)
}

// Velocity derives the velocity for a step of dt. A non-positive dt yields
// the zero vector.
func (b *Body) Velocity(dt float64) r2.Vec {
	if dt <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/dt, b.Displacement())
}

// SetVelocity replaces the implied velocity with v for a step of dt.
func (b *Body) SetVelocity(v r2.Vec, dt float64) {
	b.PrevPosition = r2.Sub(b.Position, r2.Scale(dt, v))
}

// AddVelocity adds v to the implied velocity for a step of dt.
func (b *Body) AddVelocity(v r2.Vec, dt float64) {
	b.PrevPosition = r2.Sub(b.PrevPosition, r2.Scale(dt, v))
}

// Force is the net force applied during the most recent integration.
func (b *Body) Force() r2.Vec {
	return r2.Scale(b.Mass, b.Applied)
}

func (b *Body) IsValid() bool {
	for _, v := range [...]float64{b.Position.X, b.Position.Y, b.PrevPosition.X, b.PrevPosition.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Integrator interface {
	Step(b *Body, dt float64)
}

// Sprite is what a renderer needs to draw one body.
type Sprite struct {
	Position r2.Vec
	Radius   float64
	ColorTag int
}

// View is the read-only surface telemetry collaborators query once per frame.
type View interface {
	Elapsed() float64
	StepDt() float64
	Gravitation() float64
	Len() int
	// Body returns a copy of the i-th body.
	Body(i int) (Body, bool)
}
