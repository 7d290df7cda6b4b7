package analysis

import (
	"context"
	"strings"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/sim"
)

// SweepPoint summarizes one run of a parameter sweep.
type SweepPoint struct {
	Param       float64
	FinalBodies int
	PeakBodies  int
	Collisions  int
	Populations []int // distinct population counts seen after the transient
}

// Builder returns a fresh simulator for one parameter value.
type Builder func(param float64) (*sim.Simulator, error)

// Sweep runs one world per parameter value in [lo, hi] and records how
// the population behaves. The first transient seconds are not recorded.
func Sweep(ctx context.Context, build Builder, lo, hi float64, steps int, frameDt, transient, record float64) ([]SweepPoint, error) {
	if steps <= 1 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)
	results := make([]SweepPoint, 0, steps)

	for i := 0; i < steps; i++ {
		param := lo + float64(i)*step
		s, err := build(param)
		if err != nil {
			return nil, err
		}

		events := &sim.EventLog{}
		s.AddListener(events)

		point := SweepPoint{Param: param}
		seen := make(map[int]bool)
		err = s.RunWithCallback(ctx, frameDt, func(w *sim.World, t float64) bool {
			n := w.Len()
			if n > point.PeakBodies {
				point.PeakBodies = n
			}
			if t >= transient && !seen[n] {
				seen[n] = true
				point.Populations = append(point.Populations, n)
			}
			return t < transient+record
		})
		if err != nil {
			return nil, err
		}

		point.FinalBodies = s.World().Len()
		point.Collisions = len(events.Events) - events.Count(dynamo.BoundaryHit)
		results = append(results, point)
	}

	return results, nil
}

// SweepToASCII plots every recorded population against the parameter.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	maxVal := 1
	for _, p := range data {
		for _, v := range p.Populations {
			if v > maxVal {
				maxVal = v
			}
		}
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Populations {
			row := height - 1 - v*(height-1)/maxVal
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
