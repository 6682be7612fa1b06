package model

// Note is the only persisted entity: an id assigned by the store and a
// content string that is unique across all notes.
type Note struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// CreateNoteRequest is the body of POST /notes. Content is a pointer so a
// missing key can be told apart from an empty string.
type CreateNoteRequest struct {
	Content *string `json:"content"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
