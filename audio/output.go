package audio

import (
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/pkg/errors"
)

// Play starts realtime output of the bank on the default audio device.
func Play(b *Bank) error {
	sr := b.SampleRate()
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return errors.Wrap(err, "could not init speaker")
	}
	speaker.Play(b)
	return nil
}

func Close() {
	speaker.Clear()
	speaker.Close()
}

// Step is one slice of an offline render: Before runs, then the bank is
// streamed for Hold.
type Step struct {
	Before func()
	Hold   time.Duration
}

// Render writes the bank's output across all steps as a 16 bit stereo WAV.
func Render(w io.WriteSeeker, b *Bank, steps []Step) error {
	sr := b.SampleRate()
	var streamers []beep.Streamer
	for _, s := range steps {
		s := s
		if s.Before != nil {
			streamers = append(streamers, beep.Callback(s.Before))
		}
		streamers = append(streamers, beep.Take(sr.N(s.Hold), b))
	}

	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, beep.Seq(streamers...), format); err != nil {
		return errors.Wrap(err, "could not encode wav")
	}
	return nil
}
