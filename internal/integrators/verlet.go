package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Verlet is a position Verlet integrator with an optional damping term.
// Damping subtracts k times the last displacement from the acceleration,
// trading energy conservation for stability.
type Verlet struct {
	Damping float64
}

func NewVerlet(damping float64) *Verlet {
	return &Verlet{Damping: damping}
}

// Step advances b by dt and clears its acceleration. A non-positive dt
// leaves b untouched.
func (v *Verlet) Step(b *dynamo.Body, dt float64) {
	if dt <= 0 {
		return
	}
	d := r2.Sub(b.Position, b.PrevPosition)
	acc := b.Acceleration
	if v.Damping != 0 {
		acc = r2.Sub(acc, r2.Scale(v.Damping, d))
	}

	b.PrevPosition = b.Position
	b.Position = r2.Add(r2.Add(b.Position, d), r2.Scale(dt*dt, acc))
	b.Applied = b.Acceleration
	b.Acceleration = r2.Vec{}
}

func (v *Verlet) StepAll(bodies []*dynamo.Body, dt float64) {
	for _, b := range bodies {
		v.Step(b, dt)
	}
}
