package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/tapchord/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, nil, 0666))
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mid"))
	touch(t, filepath.Join(dir, "a.MIDI"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.mid"))

	assert := assert.New(t)
	paths, err := GatherAllMidiPaths(dir, 0)
	assert.NoError(err)
	assert.Equal([]string{
		filepath.Join(dir, "a.MIDI"),
		filepath.Join(dir, "b.mid"),
		filepath.Join(dir, "sub", "c.mid"),
	}, paths)

	paths, err = GatherAllMidiPaths(dir, 2)
	assert.NoError(err)
	assert.Len(paths, 2)

	_, err = GatherAllMidiPaths(filepath.Join(dir, "missing"), 0)
	assert.Error(err)
}

func TestGetSortedKeys(t *testing.T) {
	assert.Equal(t, []uint32{1, 2, 9}, GetSortedKeys(map[uint32]string{9: "", 1: "", 2: ""}))
}

func TestBinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.dat")
	score := model.IndexedScore{
		Name:     "chor001",
		NumNotes: 2,
		Chords:   model.ChordSequence{{Tick: 0, Notes: []model.Note{{Pitch: 60, Duration: 10}, {Pitch: 64, Duration: 5}}}},
	}
	require.NoError(t, CreateBinary(path, score))

	got, err := ReadBinary[model.IndexedScore](path)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(score, got)

	_, err = ReadBinary[model.IndexedScore](path + ".missing")
	assert.True(errors.Is(err, ErrNotFound))
}

func TestRecreateOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	touch(t, filepath.Join(dir, "stale.dat"))
	require.NoError(t, RecreateOutputDir(dir))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
