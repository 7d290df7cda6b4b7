package main

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"github.com/san-kum/bouncesim/internal/audio"
	"github.com/san-kum/bouncesim/internal/config"
)

// audioOut is one synth shared by every simulator built for a scene. Each
// build gets its own sequencer so a reset restarts the song.
type audioOut struct {
	song    *audio.Song
	policy  audio.Policy
	synth   *audio.Synth
	started bool
}

func loadSong(cfg *config.Config) (*audio.Song, audio.Policy, error) {
	policy, err := audio.ParsePolicy(cfg.Song.Policy)
	if err != nil {
		return nil, 0, err
	}
	if cfg.Song.Path == "" {
		return audio.DefaultSong(), policy, nil
	}
	song, err := audio.LoadSong(cfg.Song.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load song: %w", err)
	}
	return song, policy, nil
}

func newSynth(cfg *config.Config, song *audio.Song) *audio.Synth {
	tempo := cfg.Song.Tempo
	if tempo <= 0 {
		tempo = song.Tempo
	}
	return audio.NewSynth(tempo)
}

// newAudioOut loads the song and starts the output stream. A missing audio
// device is logged and the scene runs silent.
func newAudioOut(cfg *config.Config) (*audioOut, error) {
	song, policy, err := loadSong(cfg)
	if err != nil {
		return nil, err
	}
	out := &audioOut{song: song, policy: policy, synth: newSynth(cfg, song)}
	if err := out.synth.Start(); err != nil {
		log.Printf("audio disabled: %v", err)
	} else {
		out.started = true
	}
	return out, nil
}

func (a *audioOut) Sequencer() *audio.Sequencer {
	return audio.NewSequencer(a.song, a.policy, a.synth)
}

func (a *audioOut) Close() {
	if a.started {
		a.synth.Stop()
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func sortedMetricNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
