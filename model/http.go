package model

type PressRequestBody struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	PointerId int    `json:"pointer_id"`
	Repeat    bool   `json:"repeat"`
}

type ArmRequestBody struct {
	Tuning *Tuning `json:"tuning,omitempty"`
}

type LoadResponse struct {
	ScoreId   string `json:"score_id"`
	Name      string `json:"name"`
	NumNotes  int    `json:"num_notes"`
	NumChords int    `json:"num_chords"`
}

type StateResponse struct {
	ScoreId     string  `json:"score_id"`
	Armed       bool    `json:"armed"`
	Cursor      int     `json:"cursor"`
	NumChords   int     `json:"num_chords"`
	ActivePress string  `json:"active_press"`
	Sounding    []uint8 `json:"sounding"`
}

type PressResponse struct {
	Handled bool `json:"handled"`
	Cursor  int  `json:"cursor"`
}

type ScoreResponse struct {
	ScoreId  string         `json:"score_id"`
	Name     string         `json:"name"`
	Metadata *ScoreMetadata `json:"metadata"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
