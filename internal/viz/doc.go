// Package viz previews a rendered pattern in the terminal.
//
// [Model] is a Bubble Tea model that steps through the control series at
// the pattern tempo, showing the current note, cutoff/pan/gain bars, the
// percussion lanes around the play head and a graph of recent notes.
//
// # Key Bindings
//
//	Space      - Pause/Resume playback
//	Left/Right - Scrub one step (pauses)
//	Home       - Jump to the first step
//	Q          - Quit
package viz
