// Package viz renders the simulation in the terminal.
//
//   - [Canvas]: braille raster implementing [dynamo.Surface]
//   - [Live]: Bubble Tea program whose tick loop drives the engine
//   - [CanvasToSVG], [PhaseToSVG]: vector export of a frame or a phase portrait
//
// # Key Bindings
//
//	Space - Run/Pause
//	S     - Single step while paused
//	R     - Reset to the configured parameters (leaves the engine paused)
//	E     - Export the log as CSV
//	Up/Dn - Scale the step size
//	Q     - Quit
package viz
