package config

import (
	"math/rand"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// Palette hands out colors at random without replacement and starts over
// once every color has been used.
type Palette struct {
	colors    []dynamo.Color
	remaining []dynamo.Color
	rng       *rand.Rand
}

func NewPalette(colors []dynamo.Color, rng *rand.Rand) *Palette {
	if len(colors) == 0 {
		colors = DefaultPalette
	}
	return &Palette{colors: colors, rng: rng}
}

func (p *Palette) Next() dynamo.Color {
	if len(p.remaining) == 0 {
		p.remaining = append(p.remaining[:0], p.colors...)
	}
	i := p.rng.Intn(len(p.remaining))
	c := p.remaining[i]
	p.remaining[i] = p.remaining[len(p.remaining)-1]
	p.remaining = p.remaining[:len(p.remaining)-1]
	return c
}
