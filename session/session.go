package session

import (
	"io"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/tapchord/chord"
	"github.com/jsphweid/tapchord/midi"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/playback"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNoScore = errors.New("no score loaded")

// Session serializes every call into one playback machine, so presses from
// concurrent transports are handled strictly one after another.
type Session struct {
	mu       sync.Mutex
	machine  *playback.Machine
	logger   *zap.Logger
	progress func(f func())

	scoreID  string
	name     string
	numNotes int
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithProgressInterval sets how long tapping must pause before the cursor
// position is logged.
func WithProgressInterval(d time.Duration) Option {
	return func(s *Session) {
		s.progress = debounce.New(d)
	}
}

func New(machine *playback.Machine, opts ...Option) *Session {
	s := &Session{
		machine:  machine,
		logger:   zap.NewNop(),
		progress: debounce.New(500 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadScore decodes a standard MIDI file, merges its tracks and replaces the
// current score.
func (s *Session) LoadScore(r io.Reader, name string) (model.LoadResponse, error) {
	parsed, err := midi.ReadMidi(r)
	if err != nil {
		s.logger.Warn("could not load score", zap.String("name", name), zap.Error(err))
		return model.LoadResponse{}, err
	}
	return s.LoadNotes(midi.GetNotes(parsed), name), nil
}

func (s *Session) LoadNotes(notes []model.Note, name string) model.LoadResponse {
	chords := chord.Aggregate(notes)
	return s.LoadChords(chords, name, chord.NumNotes(chords))
}

// LoadChords installs an already aggregated score, e.g. one read from the
// index.
func (s *Session) LoadChords(chords model.ChordSequence, name string, numNotes int) model.LoadResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scoreID = uuid.New().String()
	s.name = name
	s.numNotes = numNotes
	s.machine.Load(chords)
	s.logger.Info("score loaded",
		zap.String("score_id", s.scoreID),
		zap.String("name", name),
		zap.Int("notes", numNotes),
		zap.Int("chords", len(chords)))

	return model.LoadResponse{
		ScoreId:   s.scoreID,
		Name:      name,
		NumNotes:  numNotes,
		NumChords: len(chords),
	}
}

func (s *Session) Arm(tuning *model.Tuning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Arm(tuning)
}

// Handle applies one press event and reports whether it changed playback
// along with the resulting cursor.
func (s *Session) Handle(ev model.PressEvent) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handled := s.machine.Handle(ev)
	cursor, total := s.machine.Cursor(), s.machine.NumChords()
	if handled && ev.Phase == model.Down {
		s.progress(func() {
			s.logger.Info("progress", zap.Int("cursor", cursor), zap.Int("chords", total))
		})
	}
	return handled, cursor
}

func (s *Session) State() model.StateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active string
	if id := s.machine.ActivePress(); !id.IsZero() {
		active = id.String()
	}
	return model.StateResponse{
		ScoreId:     s.scoreID,
		Armed:       s.machine.Armed(),
		Cursor:      s.machine.Cursor(),
		NumChords:   s.machine.NumChords(),
		ActivePress: active,
		Sounding:    s.machine.Sounding().Pitches(),
	}
}

// Current returns the id and name of the loaded score.
func (s *Session) Current() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scoreID == "" {
		return "", "", ErrNoScore
	}
	return s.scoreID, s.name, nil
}
