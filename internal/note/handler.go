package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"notesvc/internal/note/model"
	"notesvc/internal/note/service"
	"notesvc/pkg/logger"
	"notesvc/socket"

	"github.com/gorilla/mux"
)

// Client-visible bodies. Error details only go to the log.
const (
	msgCreateFailed = "Error creating note"
	msgListFailed   = "Error getting notes"
	msgGetFailed    = "Error getting note"
	msgDeleteFailed = "Error deleting notes"
	msgDeleted      = "Notes deleted successfully"

	maxBodyBytes = 1 << 20
)

type NoteHandler struct {
	Service *service.NoteService
	Hub     *socket.Hub
}

func NewNoteHandler(service *service.NoteService, hub *socket.Hub) *NoteHandler {
	return &NoteHandler{Service: service, Hub: hub}
}

// CreateNote handles POST /notes and answers with the whole note list.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to decode create request: %v", err)
		writeText(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	notes, err := h.Service.CreateNote(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create note: %v", err)
		writeText(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	writeJSON(w, http.StatusCreated, notes)
}

func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Service.ListNotes(r.Context())
	if err != nil {
		logger.Sugar.Errorf("Error fetching notes: %v", err)
		writeText(w, http.StatusInternalServerError, msgListFailed)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) DeleteNotes(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteNotes(r.Context()); err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete notes: %v", err)
		writeText(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	writeText(w, http.StatusOK, msgDeleted)
}

// GetNote handles GET /notes/{id}. A missing note is an empty list, not a 404.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	notes, err := h.Service.GetNote(r.Context(), id)
	if err != nil {
		logger.Sugar.Errorf("Error fetching note %s: %v", id, err)
		writeText(w, http.StatusInternalServerError, msgGetFailed)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

// DeleteNote handles DELETE /notes/{id}. It confirms whether or not a row matched.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteNote(r.Context(), id); err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete note %s: %v", id, err)
		writeText(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	writeText(w, http.StatusOK, msgDeleted)
}

// Subscribe upgrades GET /ws to a change-feed websocket.
func (h *NoteHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	socket.ServeWs(h.Hub, w, r)
}

func (h *NoteHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Health(r.Context()); err != nil {
		logger.Sugar.Errorf("Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, model.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok"})
}

// decodeCreateRequest accepts exactly one JSON value. Anything after it
// makes the body invalid.
func decodeCreateRequest(body io.Reader) (model.CreateNoteRequest, error) {
	var req model.CreateNoteRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return req, &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, &model.ValidationError{Field: "body", Reason: "unexpected data after JSON value"}
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}
