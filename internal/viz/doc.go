// Package viz provides the terminal display for bisection runs.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: drives a [bisect.Engine] from key presses and renders the
//     events it publishes
//   - [Canvas]: Braille-based pixel canvas for the function plot
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	S     - Start / stop a run
//	N     - Next step (step mode only)
//	M     - Toggle step mode while idle
//	R     - Reset to the configured interval
//	Tab   - Select a setting
//	Up/Dn - Adjust the selected setting
//	T     - Cycle color themes
//	?     - Show all key bindings
//
// Engine events reach the display through a command that waits on the
// engine's event queue; the background run never calls into the display.
package viz
