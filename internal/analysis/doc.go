// Package analysis extracts quantities from sampled trajectories.
//
//   - [Period]: oscillation period from interpolated zero crossings
//   - [PowerSpectrum], [DominantFrequency]: spectral content via FFT
//   - [LyapunovExponent], [EstimateLyapunov]: divergence rate of two nearby trajectories
//   - [NewPhasePortrait], [PoincareSection]: two-component projections
//
// # Chaos Detection
//
// A positive exponent between neighbouring ensemble members indicates
// sensitive dependence on initial conditions:
//
//	lambda, err := analysis.LyapunovExponent(a, b, 1)
//	if err == nil && lambda > 0 {
//	    // chaotic
//	}
package analysis
