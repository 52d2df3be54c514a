// Package analysis characterises logged runs.
//
//   - [PowerSpectrum], [DominantFrequency]: FFT of a sampled column
//   - [PhasePortrait]: (x, v) trajectory with an ASCII renderer
//   - [Crossings], [MeasuredPeriod]: zero-crossing period estimate
//   - [WindowMeans], [EnergyTrend]: long-window energy behaviour
//
// # Damping
//
// With c > 0 the windowed mean energy should decrease strictly even though
// individual samples may fluctuate:
//
//	means := analysis.EnergyTrend(log, 500)
//	if !analysis.Decreasing(means) {
//	    // not dissipating
//	}
package analysis
