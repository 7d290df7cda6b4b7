// Package viz draws a running world in the terminal with Bubble Tea.
//
//   - [Model]: live frame loop; one Advance per tick, then a snapshot is drawn
//   - [NewMenu]: scene picker that opens a [Model]
//   - [Canvas]: braille dot canvas with per-cell color
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Rebuild the scene
//	Tab   - Cycle tunable parameter (gravity, restitution)
//	↑/↓   - Adjust it
//	T     - Cycle color themes
//	G     - Toggle GIF recording (bouncesim.gif)
//	[ ]   - Time travel through recent frames
//	?     - Help overlay
package viz
