// Package ensemble runs many copies of one system from nearby initial
// conditions and renders them together.
//
// Simulation is parallel with one goroutine per member (bounded by a worker
// limit) and a single join. Rendering is sequential: the driver owns a
// frame counter, asks [Ensemble.Frame] for the index-keyed [VisualState] of
// every member at that frame and hands the drawn image to an encoder.
package ensemble
