package dynamo

import "fmt"

type EventKind int

const (
	BoundaryHit EventKind = iota
	BodyHitSameColor
	BodyHitDiffColor
)

func (k EventKind) String() string {
	switch k {
	case BoundaryHit:
		return "boundary"
	case BodyHitSameColor:
		return "same_color"
	case BodyHitDiffColor:
		return "diff_color"
	}
	return "unknown"
}

func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "boundary":
		return BoundaryHit, nil
	case "same_color":
		return BodyHitSameColor, nil
	case "diff_color":
		return BodyHitDiffColor, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	v, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Event is a CollisionOccurred notification. B is zero for boundary hits.
type Event struct {
	Kind EventKind `json:"kind"`
	A    ID        `json:"a"`
	B    ID        `json:"b,omitempty"`
	Time float64   `json:"time"`
}

// Participants returns the IDs involved in the event.
func (e Event) Participants() []ID {
	if e.Kind == BoundaryHit {
		return []ID{e.A}
	}
	return []ID{e.A, e.B}
}
