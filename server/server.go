package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/tapchord/input"
	"github.com/jsphweid/tapchord/library"
	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/session"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const maxUploadBytes = 4 << 20

type MetadataStore interface {
	GetScoreMetadatas(ctx context.Context, names []string) (map[string]model.ScoreMetadata, error)
}

// Server is the HTTP transport for a browser tap surface. The page forwards
// raw key and pointer events; all decisions happen in the session.
type Server struct {
	session    *session.Session
	client     *http.Client
	metadata   MetadataStore
	choraleURL func(int) (string, error)
	logger     *zap.Logger
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.client = c
	}
}

func WithMetadataStore(m MetadataStore) Option {
	return func(s *Server) {
		s.metadata = m
	}
}

func WithChoraleURL(f func(int) (string, error)) Option {
	return func(s *Server) {
		s.choraleURL = f
	}
}

func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		session:    sess,
		client:     &http.Client{Timeout: 30 * time.Second},
		choraleURL: library.ChoraleURL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/score", s.HandleUpload).Methods("POST")
	router.HandleFunc("/score", s.HandleScore).Methods("GET")
	router.HandleFunc("/library/{number:[0-9]+}", s.HandleLibrary).Methods("POST")
	router.HandleFunc("/arm", s.HandleArm).Methods("POST")
	router.HandleFunc("/press", s.HandlePress).Methods("POST")
	router.HandleFunc("/state", s.HandleState).Methods("GET")
	return router
}

// Handler wraps the router with CORS for the given origins; none means any.
func (s *Server) Handler(origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.Router())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("could not write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	res, err := s.session.LoadScore(io.LimitReader(r.Body, maxUploadBytes), name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	url, err := s.choraleURL(number)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	data, err := library.Fetch(r.Context(), s.client, url)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	res, err := s.session.LoadScore(bytes.NewReader(data), library.ChoraleName(number))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleArm(w http.ResponseWriter, r *http.Request) {
	var body model.ArmRequestBody
	// an empty body arms with the default tuning
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode arm request"))
		return
	}
	if err := s.session.Arm(body.Tuning); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) HandlePress(w http.ResponseWriter, r *http.Request) {
	var body model.PressRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode press request"))
		return
	}
	ev, err := input.FromRaw(input.RawEvent{
		Type:      body.Type,
		Key:       body.Key,
		PointerID: body.PointerId,
		Repeat:    body.Repeat,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	handled, cursor := s.session.Handle(ev)
	s.writeJSON(w, http.StatusOK, model.PressResponse{Handled: handled, Cursor: cursor})
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) HandleScore(w http.ResponseWriter, r *http.Request) {
	id, name, err := s.session.Current()
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	res := model.ScoreResponse{ScoreId: id, Name: name}
	if s.metadata != nil {
		metas, err := s.metadata.GetScoreMetadatas(r.Context(), []string{name})
		if err != nil {
			// metadata is decoration; the score is still usable
			s.logger.Warn("metadata lookup failed", zap.String("name", name), zap.Error(err))
		} else if m, ok := metas[name]; ok {
			res.Metadata = &m
		}
	}
	s.writeJSON(w, http.StatusOK, res)
}
