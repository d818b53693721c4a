package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/jsphweid/tapchord/audio"
	"github.com/jsphweid/tapchord/input"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderTaps string
	renderHold time.Duration
	renderTail time.Duration
	renderOut  string
)

func init() {
	renderCmd.Flags().StringVar(&renderTaps, "taps", "", `gesture script, e.g. "a+ a- b+ a+ b- a-" (+ press, - release, * auto repeat)`)
	renderCmd.Flags().DurationVar(&renderHold, "hold", 250*time.Millisecond, "time between gestures")
	renderCmd.Flags().DurationVar(&renderTail, "tail", 500*time.Millisecond, "silence rendered after the last gesture")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "out.wav", "wav file to write")
	addTuningFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <file.mid | chorale number>",
	Short: "Renders a scripted performance to a wav file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		events, err := parseTaps(renderTaps)
		if err != nil {
			return err
		}
		return render(cmd.Context(), logger, args[0], events)
	},
}

// parseTaps reads whitespace or comma separated gestures. Each gesture is a
// key name followed by + (down), - (up) or * (auto repeated down).
func parseTaps(script string) ([]input.KeyEvent, error) {
	fields := strings.FieldsFunc(script, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	var res []input.KeyEvent
	for _, f := range fields {
		if len(f) < 2 {
			return nil, errors.Errorf("bad gesture %q", f)
		}
		key, op := f[:len(f)-1], f[len(f)-1]
		switch op {
		case '+':
			res = append(res, input.KeyEvent{Key: key, Down: true})
		case '-':
			res = append(res, input.KeyEvent{Key: key})
		case '*':
			res = append(res, input.KeyEvent{Key: key, Down: true, Repeat: true})
		default:
			return nil, errors.Errorf("bad gesture %q, want a trailing +, - or *", f)
		}
	}
	if len(res) == 0 {
		return nil, errors.New("no gestures to render")
	}
	return res, nil
}

func renderSteps(sess *session.Session, events []input.KeyEvent, hold, tail time.Duration) []audio.Step {
	d := input.NewDispatcher(func(ev model.PressEvent) bool {
		handled, _ := sess.Handle(ev)
		return handled
	})
	var steps []audio.Step
	for _, e := range events {
		e := e
		steps = append(steps, audio.Step{Before: func() { d.Key(e) }, Hold: hold})
	}
	return append(steps, audio.Step{Hold: tail})
}

func render(ctx context.Context, logger *zap.Logger, src string, events []input.KeyEvent) error {
	bank, sess := newInstrument(logger)
	if _, err := loadSource(ctx, sess, src); err != nil {
		return err
	}
	if err := sess.Arm(&tuning); err != nil {
		return err
	}

	f, err := os.Create(renderOut)
	if err != nil {
		return errors.Wrap(err, "could not create output")
	}
	defer f.Close()

	if err := audio.Render(f, bank, renderSteps(sess, events, renderHold, renderTail)); err != nil {
		return err
	}
	logger.Info("rendered", zap.String("out", renderOut), zap.Int("gestures", len(events)), zap.Int("cursor", sess.State().Cursor))
	return nil
}
