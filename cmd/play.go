package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/jsphweid/tapchord/audio"
	"github.com/jsphweid/tapchord/input"
	"github.com/jsphweid/tapchord/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
	"go.uber.org/zap"
)

var (
	playPort    int
	playIndexed int
)

func init() {
	playCmd.Flags().IntVar(&playPort, "midi-in", 0, "MIDI input port number")
	playCmd.Flags().IntVar(&playIndexed, "indexed", -1, "load this file number from the index instead of a source argument")
	addTuningFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [file.mid | chorale number]",
	Short: "Plays a score from a MIDI keyboard",
	Long: `Every key on the MIDI controller is a tap: pressing any key sounds the
next chord through the speaker, releasing it lets the chord go.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && playIndexed < 0 {
			return errors.New("need a score: a file, a chorale number or --indexed")
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var src string
		if len(args) == 1 {
			src = args[0]
		}
		return play(ctx, logger, src)
	},
}

func play(ctx context.Context, logger *zap.Logger, src string) error {
	bank, sess := newInstrument(logger)

	var loaded model.LoadResponse
	var err error
	if playIndexed >= 0 {
		loaded, err = LoadIndexed(sess, model.FileNum(playIndexed))
	} else {
		loaded, err = loadSource(ctx, sess, src)
	}
	if err != nil {
		return err
	}

	if err := sess.Arm(&tuning); err != nil {
		return err
	}
	if err := audio.Play(bank); err != nil {
		return err
	}
	defer audio.Close()

	defer gomidi.CloseDriver()
	in, err := gomidi.InPort(playPort)
	if err != nil {
		return errors.Wrapf(err, "can't find MIDI input %d", playPort)
	}

	d := input.NewDispatcher(func(ev model.PressEvent) bool {
		handled, _ := sess.Handle(ev)
		return handled
	})
	stopListening, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			d.Midi(key, true)
		case msg.GetNoteEnd(&ch, &key):
			d.Midi(key, false)
		default:
			// ignore
		}
	})
	if err != nil {
		return errors.Wrap(err, "could not listen to MIDI input")
	}
	defer stopListening()

	logger.Info("ready", zap.String("score", loaded.Name), zap.Int("chords", loaded.NumChords), zap.String("midi_in", in.String()))
	<-ctx.Done()
	return nil
}
