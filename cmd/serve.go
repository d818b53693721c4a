package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jsphweid/tapchord/audio"
	"github.com/jsphweid/tapchord/constants"
	"github.com/jsphweid/tapchord/db"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/server"
	"github.com/jsphweid/tapchord/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAddr    string
	serveSpeaker bool
	serveOrigins []string
	serveIndexed int
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetAddr(), "listen address")
	serveCmd.Flags().BoolVar(&serveSpeaker, "speaker", true, "sound chords on this machine's audio device")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origins, any when empty")
	serveCmd.Flags().IntVar(&serveIndexed, "indexed", -1, "preload this file number from the index")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the tap API",
	Long: `Serves an HTTP API a browser page can forward key and pointer events to.
Scores are uploaded as MIDI, picked from the chorale library or preloaded
from the index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return serve(ctx, logger)
	},
}

func NewServer(logger *zap.Logger, sess *session.Session) (*server.Server, error) {
	opts := []server.Option{server.WithLogger(logger)}
	if endpoint := constants.GetMetadataEndpoint(); endpoint != "" {
		store, err := db.NewStore(endpoint, constants.GetMetadataTable(), db.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		opts = append(opts, server.WithMetadataStore(store))
	}
	return server.New(sess, opts...), nil
}

func serve(ctx context.Context, logger *zap.Logger) error {
	bank, sess := newInstrument(logger)
	if serveIndexed >= 0 {
		if _, err := LoadIndexed(sess, model.FileNum(serveIndexed)); err != nil {
			return err
		}
	}
	if serveSpeaker {
		if err := audio.Play(bank); err != nil {
			return err
		}
		defer audio.Close()
	}

	srv, err := NewServer(logger, sess)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(serveOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", serveAddr))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
