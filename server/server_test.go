package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/tapchord/model"
	"github.com/jsphweid/tapchord/playback"
	"github.com/jsphweid/tapchord/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type nullBackend struct{}

func (nullBackend) Allocate(freqs []float64) error                       { return nil }
func (nullBackend) SetGain(channel int, target float64, tau time.Duration) {}

type fakeMetadata struct {
	metas map[string]model.ScoreMetadata
	err   error
}

func (f fakeMetadata) GetScoreMetadatas(ctx context.Context, names []string) (map[string]model.ScoreMetadata, error) {
	return f.metas, f.err
}

func scoreBytes(t *testing.T) []byte {
	s := smf.New()
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOn(0, 62, 100))
	tr.Add(480, midi.NoteOff(0, 62))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func newServer(opts ...Option) *Server {
	sess := session.New(playback.New(nullBackend{}), session.WithProgressInterval(time.Millisecond))
	return New(sess, opts...)
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader) *http.Response {
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

func decode[A any](t *testing.T, resp *http.Response) A {
	var res A
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func press(t *testing.T, h http.Handler, typ, key string) model.PressResponse {
	body, err := json.Marshal(model.PressRequestBody{Type: typ, Key: key})
	require.NoError(t, err)
	resp := do(t, h, http.MethodPost, "/press", bytes.NewReader(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[model.PressResponse](t, resp)
}

func TestUploadArmAndTap(t *testing.T) {
	h := newServer().Router()
	assert := assert.New(t)

	resp := do(t, h, http.MethodPost, "/score?name=scale", bytes.NewReader(scoreBytes(t)))
	assert.Equal(http.StatusOK, resp.StatusCode)
	loaded := decode[model.LoadResponse](t, resp)
	assert.Equal("scale", loaded.Name)
	assert.Equal(2, loaded.NumChords)

	// not armed yet
	assert.False(press(t, h, "keydown", "a").Handled)

	resp = do(t, h, http.MethodPost, "/arm", nil)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.True(decode[model.StateResponse](t, resp).Armed)

	assert.Equal(model.PressResponse{Handled: true, Cursor: 1}, press(t, h, "keydown", "a"))
	assert.Equal(model.PressResponse{Handled: false, Cursor: 1}, press(t, h, "keydown", "a"))
	assert.Equal(model.PressResponse{Handled: true, Cursor: 2}, press(t, h, "keydown", "b"))
	assert.Equal(model.PressResponse{Handled: false, Cursor: 2}, press(t, h, "keyup", "a"))

	state := decode[model.StateResponse](t, do(t, h, http.MethodGet, "/state", nil))
	assert.Equal("key:b", state.ActivePress)
	assert.Equal([]uint8{62}, state.Sounding)

	assert.True(press(t, h, "keyup", "b").Handled)
	state = decode[model.StateResponse](t, do(t, h, http.MethodGet, "/state", nil))
	assert.Empty(state.Sounding)
	assert.Empty(state.ActivePress)
}

func TestArmWithTuning(t *testing.T) {
	h := newServer().Router()
	resp := do(t, h, http.MethodPost, "/arm", strings.NewReader(`{"tuning":{"pitch":0,"octave":4,"frequency":256}}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, h, http.MethodPost, "/arm", strings.NewReader(`{"tuning":`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsGarbage(t *testing.T) {
	h := newServer().Router()
	resp := do(t, h, http.MethodPost, "/score", strings.NewReader("garbage"))

	assert := assert.New(t)
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(decode[model.ErrorResponse](t, resp).Error)
}

func TestPressRejectsBadJSON(t *testing.T) {
	resp := do(t, newServer().Router(), http.MethodPost, "/press", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPressRejectsUnknownType(t *testing.T) {
	h := newServer().Router()
	do(t, h, http.MethodPost, "/score?name=scale", bytes.NewReader(scoreBytes(t)))
	do(t, h, http.MethodPost, "/arm", nil)

	down, err := json.Marshal(model.PressRequestBody{Type: "pointerdown", PointerId: 0})
	require.NoError(t, err)
	resp := do(t, h, http.MethodPost, "/press", bytes.NewReader(down))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert := assert.New(t)
	for _, body := range []string{`{}`, `{"type":""}`, `{"type":"click","pointer_id":0}`} {
		resp = do(t, h, http.MethodPost, "/press", strings.NewReader(body))
		assert.Equal(http.StatusBadRequest, resp.StatusCode, body)
	}

	// the chord driven by pointer 0 is still sounding
	state := decode[model.StateResponse](t, do(t, h, http.MethodGet, "/state", nil))
	assert.Equal("pointer:0", state.ActivePress)
	assert.Equal([]uint8{60}, state.Sounding)
}

func TestLibraryLoadsChorale(t *testing.T) {
	data := scoreBytes(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer upstream.Close()

	h := newServer(
		WithHTTPClient(upstream.Client()),
		WithChoraleURL(func(n int) (string, error) { return upstream.URL, nil }),
	).Router()

	resp := do(t, h, http.MethodPost, "/library/12", nil)
	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("chor012", decode[model.LoadResponse](t, resp).Name)
}

func TestLibraryUnknownChorale(t *testing.T) {
	resp := do(t, newServer().Router(), http.MethodPost, "/library/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScoreMetadata(t *testing.T) {
	meta := model.ScoreMetadata{Title: "Ach Gott, vom Himmel sieh darein", Composer: "J. S. Bach"}
	h := newServer(WithMetadataStore(fakeMetadata{metas: map[string]model.ScoreMetadata{"chorale": meta}})).Router()
	assert := assert.New(t)

	resp := do(t, h, http.MethodGet, "/score", nil)
	assert.Equal(http.StatusNotFound, resp.StatusCode)

	do(t, h, http.MethodPost, "/score?name=chorale", bytes.NewReader(scoreBytes(t)))
	res := decode[model.ScoreResponse](t, do(t, h, http.MethodGet, "/score", nil))
	assert.Equal("chorale", res.Name)
	assert.Equal(&meta, res.Metadata)
}

func TestScoreMetadataFailureIsNotFatal(t *testing.T) {
	h := newServer(WithMetadataStore(fakeMetadata{err: errors.New("down")})).Router()
	do(t, h, http.MethodPost, "/score?name=chorale", bytes.NewReader(scoreBytes(t)))

	resp := do(t, h, http.MethodGet, "/score", nil)
	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Nil(decode[model.ScoreResponse](t, resp).Metadata)
}

func TestCorsPreflight(t *testing.T) {
	h := newServer().Handler(nil)
	req := httptest.NewRequest(http.MethodOptions, "/press", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Result().Header.Get("Access-Control-Allow-Origin"))
}
