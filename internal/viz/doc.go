// Package viz renders simulations in the terminal.
//
//   - [Canvas]: braille dot grid with a world-coordinate viewport
//   - [Preview]: one mechanism configuration drawn into a canvas
//   - [Theme]: colour schemes for previews and CLI summaries
//   - [Replay]: bubbletea model that plays a whole run back at a fixed rate
//
// Each terminal cell carries 2×4 dots, so a 60×20 cell preview resolves
// 120×80 points.
package viz
