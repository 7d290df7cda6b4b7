package audio

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Note is a pitch name such as "C4", "F#3" or "Bb2". "-" is a rest.
type Note struct {
	Name string
	Freq float64
}

func (n Note) Rest() bool { return n.Freq == 0 }

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

func ParseNote(name string) (Note, error) {
	if name == "-" || strings.EqualFold(name, "rest") {
		return Note{Name: "-"}, nil
	}
	if len(name) < 2 {
		return Note{}, fmt.Errorf("bad note %q", name)
	}

	semi, ok := semitones[byte(strings.ToUpper(name[:1])[0])]
	if !ok {
		return Note{}, fmt.Errorf("bad note %q", name)
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'b':
		semi--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, fmt.Errorf("bad note %q: %w", name, err)
	}

	midi := (octave+1)*12 + semi
	return Note{Name: name, Freq: 440 * math.Pow(2, float64(midi-69)/12)}, nil
}

type Song struct {
	Name  string   `yaml:"name"`
	Tempo float64  `yaml:"tempo"`
	Notes []Note   `yaml:"-"`
	Raw   []string `yaml:"notes"`
}

func ParseSong(data []byte) (*Song, error) {
	var s Song
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.Notes = make([]Note, 0, len(s.Raw))
	for i, name := range s.Raw {
		n, err := ParseNote(name)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		s.Notes = append(s.Notes, n)
	}
	if s.Tempo == 0 {
		s.Tempo = 1
	}
	return &s, nil
}

func LoadSong(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSong(data)
}

// DefaultSong is played when no song file is configured.
func DefaultSong() *Song {
	s, _ := ParseSong([]byte(`name: scale
notes: [C4, D4, E4, F4, G4, A4, B4, C5, B4, A4, G4, F4, E4, D4]
`))
	return s
}
