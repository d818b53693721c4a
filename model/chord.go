package model

import "math"

// MaxPitch is the highest MIDI pitch, and the last output channel.
const MaxPitch = 127

// Note is a single scored note. Pitch doubles as the output channel index.
type Note struct {
	Pitch    uint8
	Tick     float64
	Duration float64
}

func (n Note) EndTick() float64 {
	return n.Tick + n.Duration
}

// Valid reports whether the pitch is a MIDI pitch and tick and duration are
// finite and not negative.
func (n Note) Valid() bool {
	return n.Pitch <= MaxPitch && nonNegative(n.Tick) && nonNegative(n.Duration)
}

func nonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 1)
}

// Chord holds every note sharing one onset tick, in arrival order.
type Chord struct {
	Tick  float64
	Notes []Note
}

func (c Chord) Pitches() Notes {
	res := make(Notes, 0, len(c.Notes))
	for _, n := range c.Notes {
		res = append(res, n.Pitch)
	}
	return res
}

// ChordSequence is strictly increasing by Tick. It is built once per score
// and never mutated afterwards.
type ChordSequence = []Chord

type Notes = []uint8
