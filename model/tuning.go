package model

type Tuning struct {
	PitchClass int     `json:"pitch"`
	Octave     int     `json:"octave"`
	Frequency  float64 `json:"frequency"`
}

// MidiNumber is the channel index the reference frequency is pinned to.
func (t Tuning) MidiNumber() int {
	return t.PitchClass + 12*(t.Octave+1)
}

func DefaultTuning() Tuning {
	return Tuning{PitchClass: 9, Octave: 4, Frequency: 440}
}
