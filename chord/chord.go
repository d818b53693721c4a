package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/tapchord/model"
)

// Aggregate groups a flat note stream into chords ordered by onset tick.
// Notes sharing a tick keep their arrival order. Identical notes are not
// merged. A stream holding any invalid note is malformed and yields an empty
// sequence.
func Aggregate(notes []model.Note) model.ChordSequence {
	for _, note := range notes {
		if !note.Valid() {
			return model.ChordSequence{}
		}
	}

	var ticks []float64
	var chords model.ChordSequence

	for _, note := range notes {
		i := sort.SearchFloat64s(ticks, note.Tick)
		if i < len(ticks) && ticks[i] == note.Tick {
			chords[i].Notes = append(chords[i].Notes, note)
			continue
		}

		// insert a new singleton chord before the first later tick
		ticks = append(ticks, 0)
		copy(ticks[i+1:], ticks[i:])
		ticks[i] = note.Tick

		chords = append(chords, model.Chord{})
		copy(chords[i+1:], chords[i:])
		chords[i] = model.Chord{Tick: note.Tick, Notes: []model.Note{note}}
	}

	if chords == nil {
		return model.ChordSequence{}
	}
	return chords
}

// CreateChordKey renders pitches as a sorted, dash separated key ("60-64-67").
// The input is left untouched.
func CreateChordKey(notes model.Notes) string {
	sorted := make(model.Notes, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

func NumNotes(chords model.ChordSequence) int {
	var total int
	for _, c := range chords {
		total += len(c.Notes)
	}
	return total
}

// MaxPolyphony is the largest number of notes logically sounding at any
// chord onset, counting a note as active on [Tick, EndTick).
func MaxPolyphony(chords model.ChordSequence) int {
	var most int
	for i, c := range chords {
		var active int
		for _, prev := range chords[:i+1] {
			for _, n := range prev.Notes {
				if n.Tick <= c.Tick && (n.EndTick() > c.Tick || n.Tick == c.Tick) {
					active++
				}
			}
		}
		if active > most {
			most = active
		}
	}
	return most
}
