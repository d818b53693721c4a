package playback

import (
	"math"
	"strings"
	"time"

	"github.com/jsphweid/tapchord/constants"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/release"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultDenylist holds key name fragments that never advance playback.
var DefaultDenylist = []string{"Alt", "Arrow", "Audio", "Enter", "Home", "Launch", "Meta", "Play", "Tab"}

// Backend owns the pitch channels. SetGain is fire and forget: a new target
// supersedes any ramp still in flight on that channel. A zero tau sets the
// gain immediately.
type Backend interface {
	Allocate(freqs []float64) error
	SetGain(channel int, target float64, tau time.Duration)
}

type Machine struct {
	backend    Backend
	logger     *zap.Logger
	normalGain float64
	tau        time.Duration
	denylist   []string

	armed    bool
	chords   model.ChordSequence
	cursor   int
	active   model.PressID
	sounding release.SoundingSet
}

type Option func(*Machine)

func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

func WithNormalGain(g float64) Option {
	return func(m *Machine) {
		m.normalGain = g
	}
}

func WithRampTimeConstant(tau time.Duration) Option {
	return func(m *Machine) {
		m.tau = tau
	}
}

func WithDenylist(keys []string) Option {
	return func(m *Machine) {
		m.denylist = keys
	}
}

func New(backend Backend, opts ...Option) *Machine {
	m := &Machine{
		backend:    backend,
		logger:     zap.NewNop(),
		normalGain: constants.NormalGain,
		tau:        constants.RampTimeConstant,
		denylist:   DefaultDenylist,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Frequencies returns the equal tempered frequency of every pitch channel.
func Frequencies(t model.Tuning) []float64 {
	ref := t.MidiNumber()
	res := make([]float64, constants.NumChannels)
	for i := range res {
		res[i] = t.Frequency * math.Pow(2, float64(i-ref)/12)
	}
	return res
}

// Arm allocates the pitch channels on first use and resets the playback
// position. Tuning only applies to the first successful Arm; nil means A4 at
// 440 Hz. A failed allocation leaves the machine idle.
func (m *Machine) Arm(tuning *model.Tuning) error {
	if !m.armed {
		t := model.DefaultTuning()
		if tuning != nil {
			t = *tuning
		}
		if err := m.backend.Allocate(Frequencies(t)); err != nil {
			m.logger.Error("could not allocate pitch channels", zap.Error(err))
			return errors.Wrap(err, "arm")
		}
		m.armed = true
		m.logger.Info("armed",
			zap.Int("reference_midi", t.MidiNumber()),
			zap.Float64("reference_hz", t.Frequency))
	}
	m.reset()
	return nil
}

// Load replaces the chord sequence and rewinds to the first chord. The
// machine keeps its own copy, so later changes by the caller are not seen.
func (m *Machine) Load(chords model.ChordSequence) {
	m.chords = make(model.ChordSequence, len(chords))
	for i, c := range chords {
		m.chords[i] = model.Chord{Tick: c.Tick, Notes: append([]model.Note(nil), c.Notes...)}
	}
	m.reset()
	m.logger.Info("loaded chord sequence", zap.Int("chords", len(chords)))
}

func (m *Machine) reset() {
	m.cursor = 0
	m.active = model.PressID{}
	m.sounding = nil
	if !m.armed {
		return
	}
	for ch := 0; ch < constants.NumChannels; ch++ {
		m.backend.SetGain(ch, 0, 0)
	}
}

func (m *Machine) denied(label string) bool {
	for _, bad := range m.denylist {
		if strings.Contains(label, bad) {
			return true
		}
	}
	return false
}

// PressDown sounds the chord at the cursor and makes id the driving press.
// A different id arriving while another press is held still advances and
// takes over. It reports whether the event advanced playback.
func (m *Machine) PressDown(id model.PressID, isRepeat bool, label string) bool {
	var reason string
	switch {
	case !m.armed:
		reason = "not armed"
	case id == m.active:
		reason = "already driving"
	case isRepeat:
		reason = "auto repeat"
	case m.denied(label):
		reason = "non musical key"
	case m.cursor >= len(m.chords):
		reason = "end of score"
	}
	if reason != "" {
		m.logger.Debug("ignored press down", zap.Stringer("press", id), zap.String("reason", reason))
		return false
	}

	m.stopNotes()
	m.startChord()
	m.active = id
	m.cursor++
	return true
}

// PressUp releases whatever may stop at the current cursor when id is the
// driving press. The cursor does not move.
func (m *Machine) PressUp(id model.PressID) bool {
	if !m.armed || m.active.IsZero() || id != m.active {
		m.logger.Debug("ignored press up", zap.Stringer("press", id), zap.Stringer("active", m.active))
		return false
	}
	m.stopNotes()
	m.active = model.PressID{}
	return true
}

func (m *Machine) Handle(ev model.PressEvent) bool {
	if ev.Phase == model.Down {
		return m.PressDown(ev.ID, ev.IsRepeat, ev.Label)
	}
	return m.PressUp(ev.ID)
}

// stopNotes must run before startChord so the new chord's pitches are not
// taken for leftovers of the old one.
func (m *Machine) stopNotes() {
	cutoff := release.Cutoff(m.chords, m.cursor)
	toRelease, remaining := release.Release(cutoff, m.sounding)
	for _, n := range toRelease {
		m.backend.SetGain(int(n.Pitch), 0, m.tau)
	}
	m.sounding = remaining
}

func (m *Machine) startChord() {
	for _, n := range m.chords[m.cursor].Notes {
		m.backend.SetGain(int(n.Pitch), m.normalGain, m.tau)
		m.sounding = m.sounding.Add(n)
	}
}

func (m *Machine) Armed() bool {
	return m.armed
}

func (m *Machine) Cursor() int {
	return m.cursor
}

func (m *Machine) NumChords() int {
	return len(m.chords)
}

func (m *Machine) ActivePress() model.PressID {
	return m.active
}

func (m *Machine) Sounding() release.SoundingSet {
	res := make(release.SoundingSet, len(m.sounding))
	copy(res, m.sounding)
	return res
}
