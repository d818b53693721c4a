package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/tapchord/chord"
	"github.com/jsphweid/tapchord/midi"
	"github.com/jsphweid/tapchord/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Prints the chord sequence of a score",
	Long:  `Prints every chord a performer would tap through, with onset tick and pitches.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chords, err := readChords(args[0])
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), chords)
		return nil
	},
}

func readChords(path string) (model.ChordSequence, error) {
	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	return chord.Aggregate(midi.GetNotes(parsed)), nil
}

func inspect(w io.Writer, chords model.ChordSequence) {
	for i, c := range chords {
		fmt.Fprintf(w, "%4d  tick %-8v %s\n", i, c.Tick, chord.CreateChordKey(c.Pitches()))
	}
}
