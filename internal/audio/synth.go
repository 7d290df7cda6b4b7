package audio

import (
	"log"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

const (
	SampleRate = 44100
	BufferSize = 1024
	MaxVoices  = 16
)

type voice struct {
	freq  float64
	phase float64
	amp   float64
	decay float64 // per-sample multiplier
	pan   float64 // 0 left, 1 right
}

// Synth renders collision notes as decaying triangle plucks through a
// low-pass filter and a stereo delay.
type Synth struct {
	Stream *portaudio.Stream

	mu     sync.Mutex
	voices []voice
	tempo  float64

	FilterState [2]float64
	DelayLine   [2][]float64
	DelayHead   int

	energy       float64
	EnergySmooth float64

	Active bool
}

func NewSynth(tempo float64) *Synth {
	if tempo <= 0 {
		tempo = 1
	}
	// 0.35 second delay
	delayLen := int(float64(SampleRate) * 0.35)

	return &Synth{
		tempo:     tempo,
		voices:    make([]voice, 0, MaxVoices),
		DelayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
	}
}

func (a *Synth) Start() error {
	if err := portaudio.Initialize(); err != nil {
		log.Printf("audio: initialize failed: %v", err)
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.ProcessAudio)
	if err != nil {
		log.Printf("audio: open stream failed: %v", err)
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		log.Printf("audio: start stream failed: %v", err)
		stream.Close()
		portaudio.Terminate()
		return err
	}

	a.Stream = stream
	a.Active = true
	return nil
}

func (a *Synth) Stop() {
	if !a.Active {
		return
	}
	if a.Stream != nil {
		a.Stream.Stop()
		a.Stream.Close()
	}
	portaudio.Terminate()
	a.Active = false
}

// Play queues a pluck. Same-color hits ring longer and sit in the middle,
// boundary hits are short.
func (a *Synth) Play(n Note, kind dynamo.EventKind) {
	seconds := 0.6 / a.tempo
	pan := 0.5
	amp := 0.5
	switch kind {
	case dynamo.BoundaryHit:
		seconds *= 0.5
		amp = 0.3
		pan = 0.2
	case dynamo.BodyHitDiffColor:
		pan = 0.8
	}

	v := voice{
		freq:  n.Freq,
		amp:   amp,
		decay: math.Pow(0.001, 1/(seconds*SampleRate)),
		pan:   pan,
	}

	a.mu.Lock()
	if len(a.voices) >= MaxVoices {
		a.voices = a.voices[1:]
	}
	a.voices = append(a.voices, v)
	a.mu.Unlock()
}

// UpdateEnergy feeds the world's kinetic energy in; more energy opens the
// filter.
func (a *Synth) UpdateEnergy(energy float64) {
	a.mu.Lock()
	a.energy = energy
	a.mu.Unlock()
}

func (a *Synth) Voices() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voices)
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// one pole low pass
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

func (a *Synth) ProcessAudio(out [][]float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.EnergySmooth = a.EnergySmooth*0.95 + a.energy*0.05
	cutoff := 800.0 + math.Min(a.EnergySmooth/500.0, 4000.0)
	dt := 1.0 / float64(SampleRate)
	vol := 0.4

	for i := 0; i < len(out[0]); i++ {
		sampleL := 0.0
		sampleR := 0.0

		for j := range a.voices {
			v := &a.voices[j]
			s := triangle(v.phase) * v.amp
			sampleL += s * (1 - v.pan)
			sampleR += s * v.pan
			v.phase += v.freq * dt
			v.amp *= v.decay
		}

		var outL, outR float64
		outL, a.FilterState[0] = lpf(sampleL, cutoff, dt, a.FilterState[0])
		outR, a.FilterState[1] = lpf(sampleR, cutoff, dt, a.FilterState[1])

		delayL := a.DelayLine[0][a.DelayHead]
		delayR := a.DelayLine[1][a.DelayHead]

		// ping pong
		mixL := outL + delayL*0.3 + delayR*0.1
		mixR := outR + delayR*0.3 + delayL*0.1

		a.DelayLine[0][a.DelayHead] = mixL * 0.5
		a.DelayLine[1][a.DelayHead] = mixR * 0.5
		a.DelayHead = (a.DelayHead + 1) % len(a.DelayLine[0])

		out[0][i] = float32(mixL * vol)
		out[1][i] = float32(mixR * vol)
	}

	live := a.voices[:0]
	for _, v := range a.voices {
		if v.amp > 1e-4 {
			live = append(live, v)
		}
	}
	a.voices = live
}
