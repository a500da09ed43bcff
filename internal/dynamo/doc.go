// Package dynamo provides the core data model for the particle simulation.
//
// The package defines the entities every other package works on:
//
//   - [Body]: a circular point mass integrated with position Verlet
//   - [Population]: the owning, capped collection of bodies
//   - [Integrator]: advances one body by one timestep
//   - [View]: read-only access for telemetry collaborators
//   - [Sprite]: the per-body record handed to renderers
//
// Velocity is never stored. It is derived from the difference between the
// current and previous position, so moving a body (collision response,
// boundary clamp) implicitly changes its velocity.
//
// # Example
//
//	pop := dynamo.NewPopulation(1000)
//	b := dynamo.NewBody(r2.Vec{X: 10, Y: 10}, 5, 2)
//	b.SetVelocity(r2.Vec{X: 100}, 1.0/480)
//	pop.Add(b)
//
// # Thread Safety
//
// Bodies and populations are NOT thread-safe. Parallel phases in other
// packages partition bodies so that no body is written by two goroutines.
package dynamo
