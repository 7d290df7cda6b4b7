package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// EventRate bins events into a per-second rate series with the given bin
// width, covering [0, duration).
func EventRate(events []dynamo.Event, binWidth, duration float64) []float64 {
	if binWidth <= 0 || duration <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / binWidth))
	rate := make([]float64, n)
	for _, e := range events {
		i := int(e.Time / binWidth)
		if i < 0 || i >= n {
			continue
		}
		rate[i] += 1 / binWidth
	}
	return rate
}

// PowerSpectrum returns |X(k)| for k in [0, n/2) of the mean-removed series.
// Any length works.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency in Hz for a
// series sampled every dt seconds.
func DominantFrequency(data []float64, dt float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(data)) * dt), ps[best]
}
