// Package spatial holds the broad-phase structures rebuilt every substep
// from a body snapshot: a uniform Grid hash and a Barnes-Hut Tree.
//
// Both store int32 indices into the snapshot slice they were built from and
// never own bodies. The Tree additionally aggregates mass and center of mass
// per node for gravity approximation.
package spatial
