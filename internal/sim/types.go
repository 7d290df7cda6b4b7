package sim

import (
	"github.com/san-kum/bouncesim/internal/dynamo"
)

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(w *World, t float64)
	Value() float64
	Reset()
}

// Observer sees the world once per frame, after every sub-step has run.
type Observer interface {
	OnFrame(w *World, t float64)
}

// Listener receives CollisionOccurred events after each sub-step's
// resolution pass.
type Listener interface {
	OnEvent(e dynamo.Event)
}

type ListenerFunc func(e dynamo.Event)

func (f ListenerFunc) OnEvent(e dynamo.Event) { f(e) }

// EventLog is a Listener that keeps every event.
type EventLog struct {
	Events []dynamo.Event
}

func (l *EventLog) OnEvent(e dynamo.Event) { l.Events = append(l.Events, e) }

func (l *EventLog) Count(kind dynamo.EventKind) int {
	n := 0
	for _, e := range l.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type Config struct {
	FrameDt       float64
	Duration      float64
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		FrameDt:       1.0 / 60,
		Duration:      10.0,
		ValidateState: true,
	}
}
