package midi

import (
	"bytes"
	"io"
	"os"

	"github.com/jsphweid/tapchord/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return ReadMidi(bytes.NewReader(dat))
}

func ReadMidi(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = errors.Errorf("error parsing midi file... %v", r)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

type key struct {
	ch, note uint8
}

// GetNotes flattens every track into one note stream. Notes appear in the
// order their note-on arrived within each track, tracks in file order. A
// note-off closes the oldest open note on the same channel and key; notes
// still open at the end of a track close there.
func GetNotes(s *smf.SMF) []model.Note {
	var res []model.Note

	for _, events := range s.Tracks {
		var absTicks int64
		open := make(map[key][]int)
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, note, velocity uint8
			switch {
			case event.Message.GetNoteStart(&channel, &note, &velocity):
				k := key{channel, note}
				open[k] = append(open[k], len(res))
				res = append(res, model.Note{Pitch: note, Tick: float64(absTicks)})
			case event.Message.GetNoteEnd(&channel, &note):
				k := key{channel, note}
				if len(open[k]) == 0 {
					continue
				}
				i := open[k][0]
				open[k] = open[k][1:]
				res[i].Duration = float64(absTicks) - res[i].Tick
			}
		}
		for _, indexes := range open {
			for _, i := range indexes {
				res[i].Duration = float64(absTicks) - res[i].Tick
			}
		}
	}

	return res
}
