// Package viz renders simulation results in the terminal.
//
// Two surfaces: static charts of recorded series for the run and plot
// commands, and an interactive Bubble Tea view that steps a simulation
// live.
//
// # Key Bindings
//
//	Space - Pause/Resume the run
//	Tab   - Cycle the charted series
//	R     - Restart from the initial state
//	Q     - Quit
package viz
