// Package viz renders a running simulation in the terminal.
//
//   - [Canvas]: braille raster with per-cell color tags
//   - [Live]: Bubble Tea model stepping the simulator once per tick
//   - [Theme]: lipgloss color schemes with a hue-spaced stream palette
//   - [Film]: GIF capture of canvas frames
//
// # Key Bindings
//
//	Space - Pause/Resume physics
//	S     - Toggle stream spawning
//	C     - Clear all bodies
//	1/2/3 - Brute-force, grid or quadtree collisions
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Quit
package viz
