// Package analysis inspects recorded or live runs.
//
//   - [EventRate], [PowerSpectrum], [DominantFrequency]: collision-rate spectrum
//   - [Sweep]: population behaviour across a parameter range
//   - [DivergenceRate]: sensitivity of a scene to a small nudge
//   - [ScatterToASCII]: body positions inside the boundary
package analysis
