package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// silence is the gain below which a decaying channel is treated as off.
const silence = 1e-5

var ErrNoChannels = errors.New("no channels to allocate")

type channel struct {
	freq   float64
	phase  float64
	gain   float64
	target float64
	coef   float64
}

// Bank is a set of always running sine oscillators, one per pitch. Gains
// approach their target exponentially, the way a one pole smoother does, so
// starts and stops never click. It is safe to call SetGain while the speaker
// goroutine is streaming.
type Bank struct {
	mu     sync.Mutex
	sr     beep.SampleRate
	chans  []channel
	logger *zap.Logger
}

type Option func(*Bank)

func WithLogger(l *zap.Logger) Option {
	return func(b *Bank) {
		b.logger = l
	}
}

func NewBank(sr beep.SampleRate, opts ...Option) *Bank {
	b := &Bank{sr: sr, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bank) SampleRate() beep.SampleRate {
	return b.sr
}

func (b *Bank) Allocate(freqs []float64) error {
	if len(freqs) == 0 {
		return ErrNoChannels
	}
	nyquist := float64(b.sr) / 2
	chans := make([]channel, len(freqs))
	for i, f := range freqs {
		if f <= 0 || f >= nyquist {
			return errors.Errorf("channel %d frequency %.2f Hz outside (0, %.0f)", i, f, nyquist)
		}
		chans[i] = channel{freq: f, coef: 1}
	}

	b.mu.Lock()
	b.chans = chans
	b.mu.Unlock()
	b.logger.Info("allocated oscillator bank", zap.Int("channels", len(chans)), zap.Int("sample_rate", int(b.sr)))
	return nil
}

func (b *Bank) SetGain(ch int, target float64, tau time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch < 0 || ch >= len(b.chans) {
		b.logger.Warn("gain for unknown channel", zap.Int("channel", ch))
		return
	}
	c := &b.chans[ch]
	c.target = target
	if tau <= 0 {
		c.gain = target
		c.coef = 1
		return
	}
	c.coef = 1 - math.Exp(-1/(tau.Seconds()*float64(b.sr)))
}

func (b *Bank) Gain(ch int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch < 0 || ch >= len(b.chans) {
		return 0
	}
	return b.chans[ch].gain
}

// Stream never runs dry; the bank plays silence until gains rise.
func (b *Bank) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	step := 1 / float64(b.sr)
	for ci := range b.chans {
		c := &b.chans[ci]
		if c.target == 0 && c.gain < silence {
			c.gain = 0
			continue
		}
		for i := range samples {
			c.gain += (c.target - c.gain) * c.coef
			v := c.gain * math.Sin(2*math.Pi*c.phase)
			samples[i][0] += v
			samples[i][1] += v
			c.phase += c.freq * step
			if c.phase >= 1 {
				c.phase -= math.Floor(c.phase)
			}
		}
	}
	return len(samples), true
}

func (b *Bank) Err() error {
	return nil
}
