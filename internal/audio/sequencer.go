package audio

import (
	"fmt"
	"sync"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// Policy decides what happens once the cursor runs past the last note.
type Policy int

const (
	Wrap Policy = iota
	Clamp
	Stop
)

func (p Policy) String() string {
	switch p {
	case Wrap:
		return "wrap"
	case Clamp:
		return "clamp"
	case Stop:
		return "stop"
	}
	return "unknown"
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "wrap":
		return Wrap, nil
	case "clamp":
		return Clamp, nil
	case "stop":
		return Stop, nil
	}
	return 0, fmt.Errorf("unknown note policy %q", s)
}

// Voice sounds a note for one collision.
type Voice interface {
	Play(n Note, kind dynamo.EventKind)
}

// Sequencer owns the song cursor. Every collision event advances it by one
// and hands the note to the voice.
type Sequencer struct {
	mu     sync.Mutex
	notes  []Note
	policy Policy
	cursor int
	voice  Voice
	played int
}

func NewSequencer(song *Song, policy Policy, voice Voice) *Sequencer {
	return &Sequencer{notes: song.Notes, policy: policy, voice: voice}
}

// Next returns the note at the cursor and advances it. ok is false when
// the song is empty or a Stop sequence has run out.
func (s *Sequencer) Next() (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.notes) == 0 {
		return Note{}, false
	}

	i := s.cursor
	if i >= len(s.notes) {
		switch s.policy {
		case Wrap:
			i %= len(s.notes)
		case Clamp:
			i = len(s.notes) - 1
		case Stop:
			return Note{}, false
		}
	}
	s.cursor++
	return s.notes[i], true
}

func (s *Sequencer) OnEvent(e dynamo.Event) {
	n, ok := s.Next()
	if !ok || n.Rest() {
		return
	}
	s.mu.Lock()
	s.played++
	s.mu.Unlock()
	if s.voice != nil {
		s.voice.Play(n, e.Kind)
	}
}

func (s *Sequencer) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Sequencer) Played() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

func (s *Sequencer) Reset() {
	s.mu.Lock()
	s.cursor = 0
	s.played = 0
	s.mu.Unlock()
}
