package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/jsphweid/tapchord/chord"
	"github.com/jsphweid/tapchord/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <file.mid>",
	Short: "Creates a report",
	Long:  `Summarizes a score: note and chord counts, tick span, pitch range and peak polyphony.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chords, err := readChords(args[0])
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), analyze(chords))
		return nil
	},
}

type scoreReport struct {
	numNotes     int
	numChords    int
	lastOnset    float64
	lastEnd      float64
	lowest       uint8
	highest      uint8
	maxPolyphony int
	largestChord int
}

func analyze(chords model.ChordSequence) scoreReport {
	report := scoreReport{
		numNotes:     chord.NumNotes(chords),
		numChords:    len(chords),
		maxPolyphony: chord.MaxPolyphony(chords),
		lowest:       math.MaxUint8,
	}
	if len(chords) == 0 {
		report.lowest = 0
		return report
	}
	report.lastOnset = chords[len(chords)-1].Tick
	for _, c := range chords {
		if len(c.Notes) > report.largestChord {
			report.largestChord = len(c.Notes)
		}
		for _, n := range c.Notes {
			report.lastEnd = math.Max(report.lastEnd, n.EndTick())
			if n.Pitch < report.lowest {
				report.lowest = n.Pitch
			}
			if n.Pitch > report.highest {
				report.highest = n.Pitch
			}
		}
	}
	return report
}

func printReport(w io.Writer, report scoreReport) {
	fmt.Fprintf(w, "notes: %v\n", report.numNotes)
	fmt.Fprintf(w, "chords (taps): %v\n", report.numChords)
	fmt.Fprintf(w, "last onset tick: %v\n", report.lastOnset)
	fmt.Fprintf(w, "last end tick: %v\n", report.lastEnd)
	fmt.Fprintf(w, "pitch range: %v-%v\n", report.lowest, report.highest)
	fmt.Fprintf(w, "largest chord: %v\n", report.largestChord)
	fmt.Fprintf(w, "max polyphony: %v\n", report.maxPolyphony)
}
