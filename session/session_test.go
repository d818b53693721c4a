package session

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type nullBackend struct{}

func (nullBackend) Allocate(freqs []float64) error                       { return nil }
func (nullBackend) SetGain(channel int, target float64, tau time.Duration) {}

func scoreBytes(t *testing.T) []byte {
	s := smf.New()
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOff(0, 64))
	tr.Add(0, midi.NoteOn(0, 67, 100))
	tr.Add(480, midi.NoteOff(0, 67))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func newSession() *Session {
	return New(playback.New(nullBackend{}), WithProgressInterval(time.Millisecond))
}

func TestLoadScore(t *testing.T) {
	s := newSession()
	res, err := s.LoadScore(bytes.NewReader(scoreBytes(t)), "test")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.NotEmpty(res.ScoreId)
	assert.Equal("test", res.Name)
	assert.Equal(3, res.NumNotes)
	assert.Equal(2, res.NumChords)

	id, name, err := s.Current()
	assert.NoError(err)
	assert.Equal(res.ScoreId, id)
	assert.Equal("test", name)
}

func TestLoadScoreRejectsGarbage(t *testing.T) {
	s := newSession()
	_, err := s.LoadScore(bytes.NewReader([]byte("nope")), "bad")

	assert := assert.New(t)
	assert.Error(err)
	_, _, err = s.Current()
	assert.ErrorIs(err, ErrNoScore)
}

func TestLoadNotesDropsMalformedStream(t *testing.T) {
	s := newSession()
	res := s.LoadNotes([]model.Note{{Pitch: 72, Duration: 5}, {Pitch: 200, Duration: 50}}, "bad")

	assert := assert.New(t)
	assert.Equal(0, res.NumChords)
	assert.Equal(0, res.NumNotes)

	require.NoError(t, s.Arm(nil))
	handled, cursor := s.Handle(model.PressEvent{ID: model.Key("a"), Phase: model.Down, Label: "a"})
	assert.False(handled)
	assert.Equal(0, cursor)
}

func TestReloadGetsNewIdAndRewinds(t *testing.T) {
	s := newSession()
	first, err := s.LoadScore(bytes.NewReader(scoreBytes(t)), "a")
	require.NoError(t, err)
	require.NoError(t, s.Arm(nil))
	s.Handle(model.PressEvent{ID: model.Key("a"), Phase: model.Down, Label: "a"})

	second, err := s.LoadScore(bytes.NewReader(scoreBytes(t)), "b")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.NotEqual(first.ScoreId, second.ScoreId)
	state := s.State()
	assert.Equal(0, state.Cursor)
	assert.True(state.Armed)
	assert.Empty(state.ActivePress)
}

func TestHandleAndState(t *testing.T) {
	s := newSession()
	_, err := s.LoadScore(bytes.NewReader(scoreBytes(t)), "test")
	require.NoError(t, err)

	assert := assert.New(t)
	handled, cursor := s.Handle(model.PressEvent{ID: model.Key("a"), Phase: model.Down, Label: "a"})
	assert.False(handled)
	assert.Equal(0, cursor)

	require.NoError(t, s.Arm(nil))
	handled, cursor = s.Handle(model.PressEvent{ID: model.Key("a"), Phase: model.Down, Label: "a"})
	assert.True(handled)
	assert.Equal(1, cursor)

	state := s.State()
	assert.Equal(model.StateResponse{
		ScoreId:     state.ScoreId,
		Armed:       true,
		Cursor:      1,
		NumChords:   2,
		ActivePress: "key:a",
		Sounding:    []uint8{60, 64},
	}, state)
}

func TestConcurrentPressesAreSerialized(t *testing.T) {
	s := newSession()
	var notes []model.Note
	for i := 0; i < 100; i++ {
		notes = append(notes, model.Note{Pitch: 60, Tick: float64(i), Duration: 1})
	}
	s.LoadNotes(notes, "scale")
	require.NoError(t, s.Arm(nil))

	var wg sync.WaitGroup
	for p := 0; p < 50; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			s.Handle(model.PressEvent{ID: model.Pointer(p), Phase: model.Down})
			s.Handle(model.PressEvent{ID: model.Pointer(p), Phase: model.Up})
		}(p)
	}
	wg.Wait()

	// every pointer id differs from whatever was driving before it, so each
	// down advances exactly once
	assert.Equal(t, 50, s.State().Cursor)
}
