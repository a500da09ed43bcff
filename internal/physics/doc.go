// Package physics holds the per-substep force and contact passes.
//
//   - [Gravity]: mutual attraction, brute force or through a [spatial.Tree]
//   - [Resolver]: positional overlap correction with three broad phases
//   - [Boundary]: clamps bodies into the world box
//
// Every pass works on a body snapshot and writes accelerations or positions
// in place. Parallel variants partition work so no body is written by two
// tasks at once.
//
//	grav := physics.NewGravity(physics.DefaultG, spatial.DefaultTheta)
//	grav.BruteForce(bodies)
//	physics.NewResolver(physics.DefaultResponse).BruteForce(bodies)
package physics
