package release

import (
	"math"

	"github.com/jsphweid/tapchord/model"
)

// Infinity is the cutoff used once the chord sequence is exhausted.
var Infinity = math.Inf(1)

// SoundingSet is the multiset of notes whose channel has not been released.
// The same pitch may appear more than once.
type SoundingSet []model.Note

func (s SoundingSet) Add(notes ...model.Note) SoundingSet {
	return append(s, notes...)
}

func (s SoundingSet) Pitches() model.Notes {
	res := make(model.Notes, 0, len(s))
	for _, n := range s {
		res = append(res, n.Pitch)
	}
	return res
}

// Release splits sounding into the notes whose channels should go silent at
// cutoff and the notes that keep sounding past it.
//
// A note is a candidate when EndTick() <= cutoff. A candidate is withheld
// from toRelease when another note of the same pitch outlives the cutoff,
// since both share one output channel. Withheld candidates are still dropped
// from remaining.
func Release(cutoff float64, sounding SoundingSet) (toRelease []model.Note, remaining SoundingSet) {
	var alive [256]int
	remaining = make(SoundingSet, 0, len(sounding))
	for _, n := range sounding {
		if n.EndTick() > cutoff {
			alive[n.Pitch]++
			remaining = append(remaining, n)
		}
	}

	for _, n := range sounding {
		if n.EndTick() > cutoff {
			continue
		}
		if alive[n.Pitch] == 0 {
			toRelease = append(toRelease, n)
		}
	}
	return toRelease, remaining
}

// Cutoff is the tick of the chord at cursor, or Infinity past the end.
func Cutoff(chords model.ChordSequence, cursor int) float64 {
	if cursor >= 0 && cursor < len(chords) {
		return chords[cursor].Tick
	}
	return Infinity
}
