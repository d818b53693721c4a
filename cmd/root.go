package cmd

import (
	"context"

	"github.com/jsphweid/tapchord/constants"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string
	devLog   bool
)

var rootCmd = &cobra.Command{
	Use:   "tapchord",
	Short: "Tap through a score one chord at a time",
	Long: `tapchord groups a MIDI score into chords and lets a performer step
through them: every key, pointer or controller press sounds the next chord
and holds it for as long as the press lasts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", constants.GetLogLevel(), "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "human readable development logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if devLog {
		cfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, errors.Wrap(err, "bad log level")
	}
	cfg.Level = level
	return cfg.Build()
}
