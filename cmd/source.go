package cmd

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gopxl/beep"
	"github.com/jsphweid/tapchord/audio"
	"github.com/jsphweid/tapchord/constants"
	"github.com/jsphweid/tapchord/file"
	"github.com/jsphweid/tapchord/library"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/playback"
	"github.com/jsphweid/tapchord/session"
	"github.com/jsphweid/tapchord/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tuning = model.DefaultTuning()

func addTuningFlags(c *cobra.Command) {
	c.Flags().IntVar(&tuning.PitchClass, "pitch", tuning.PitchClass, "reference pitch class, 0 = C")
	c.Flags().IntVar(&tuning.Octave, "octave", tuning.Octave, "reference octave")
	c.Flags().Float64Var(&tuning.Frequency, "frequency", tuning.Frequency, "reference frequency in Hz")
}

// newInstrument wires an oscillator bank, a playback machine and a session.
func newInstrument(logger *zap.Logger) (*audio.Bank, *session.Session) {
	bank := audio.NewBank(beep.SampleRate(constants.SampleRate), audio.WithLogger(logger))
	machine := playback.New(bank, playback.WithLogger(logger))
	return bank, session.New(machine, session.WithLogger(logger))
}

// loadSource accepts a MIDI file path or a chorale number.
func loadSource(ctx context.Context, sess *session.Session, src string) (model.LoadResponse, error) {
	if number, err := strconv.Atoi(src); err == nil {
		url, err := library.ChoraleURL(number)
		if err != nil {
			return model.LoadResponse{}, err
		}
		client := &http.Client{Timeout: 30 * time.Second}
		data, err := library.Fetch(ctx, client, url)
		if err != nil {
			return model.LoadResponse{}, err
		}
		return sess.LoadScore(bytes.NewReader(data), library.ChoraleName(number))
	}

	f, err := os.Open(src)
	if err != nil {
		return model.LoadResponse{}, errors.Wrap(err, "could not open score")
	}
	defer f.Close()
	return sess.LoadScore(f, file.ScoreName(src))
}

func ReadIndex() (map[model.FileNum]model.IndexedScore, error) {
	return util.ReadBinary[map[model.FileNum]model.IndexedScore](filepath.Join(constants.GetIndexDir(), constants.AllScoresFile))
}

// LoadIndexed installs a score the index command already aggregated.
func LoadIndexed(sess *session.Session, num model.FileNum) (model.LoadResponse, error) {
	scores, err := ReadIndex()
	if err != nil {
		return model.LoadResponse{}, err
	}
	score, ok := scores[num]
	if !ok {
		return model.LoadResponse{}, errors.Wrapf(util.ErrNotFound, "file number %d", num)
	}
	return sess.LoadChords(score.Chords, score.Name, score.NumNotes), nil
}
