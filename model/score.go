package model

type ScoreMetadata struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
	Year     uint   `json:"year"`
}

type FileNum = uint32
type FileNumToMidiPath = map[FileNum]string

// IndexedScore is what the index command persists per MIDI file.
type IndexedScore struct {
	Name     string
	NumNotes int
	Chords   ChordSequence
}
