package cmd

import (
	"path/filepath"
	"strconv"

	"github.com/jsphweid/tapchord/chord"
	"github.com/jsphweid/tapchord/constants"
	"github.com/jsphweid/tapchord/file"
	"github.com/jsphweid/tapchord/midi"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [max files]",
	Short: "Aggregates every MIDI file under MEDIA_PATH",
	Long: `Walks MEDIA_PATH for .mid and .midi files, groups each into chords and
stores the result under INDEX_PATH so serve and play can load them by number.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(err, "max files must be a number")
			}
			maxNum = arg1
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return Index(logger, maxNum)
	},
}

func Index(logger *zap.Logger, maxNum int) error {
	media := constants.GetMediaDir()
	if media == "" {
		return errors.New("MEDIA_PATH environment variable is not set")
	}
	paths, err := util.GatherAllMidiPaths(media, maxNum)
	if err != nil {
		return err
	}

	dir := constants.GetIndexDir()
	if err := util.RecreateOutputDir(dir); err != nil {
		return err
	}

	fileNumMap := file.CreateFileNumMap(paths)
	scores := make(map[model.FileNum]model.IndexedScore)
	keys := util.GetSortedKeys(fileNumMap)
	for i, num := range keys {
		path := fileNumMap[num]
		logger.Info("processing midi file", zap.Int("n", i+1), zap.Int("of", len(keys)), zap.String("path", path))
		parsed, err := midi.ReadMidiFile(path)
		if err != nil {
			logger.Warn("skipping midi file", zap.String("path", path), zap.Error(err))
			continue
		}
		chords := chord.Aggregate(midi.GetNotes(parsed))
		scores[num] = model.IndexedScore{
			Name:     file.ScoreName(path),
			NumNotes: chord.NumNotes(chords),
			Chords:   chords,
		}
	}

	if err := util.CreateBinary(filepath.Join(dir, constants.AllScoresFile), scores); err != nil {
		return err
	}
	return util.CreateBinary(filepath.Join(dir, constants.FileNumToNameFile), fileNumMap)
}
