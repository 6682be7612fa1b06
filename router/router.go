package router

import (
	"net/http"

	noteHandler "notesvc/internal/note"
	"notesvc/internal/note/repository"
	"notesvc/internal/note/service"
	"notesvc/middleware"
	"notesvc/socket"

	"github.com/gorilla/mux"
)

// Setup wires the note routes onto an initialized repository. hub carries
// the change feed and must be running for subscribers to receive events.
func Setup(repo *repository.NoteRepository, hub *socket.Hub) http.Handler {
	r := mux.NewRouter()

	noteService := service.NewNoteService(repo, hub)
	h := noteHandler.NewNoteHandler(noteService, hub)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.Subscribe).Methods(http.MethodGet)

	r.HandleFunc("/notes", h.CreateNote).Methods(http.MethodPost)
	r.HandleFunc("/notes", h.GetNotes).Methods(http.MethodGet)
	r.HandleFunc("/notes", h.DeleteNotes).Methods(http.MethodDelete)

	r.HandleFunc("/notes/{id}", h.GetNote).Methods(http.MethodGet)
	r.HandleFunc("/notes/{id}", h.DeleteNote).Methods(http.MethodDelete)

	return middleware.RecoveryMiddleware(middleware.LoggingMiddleware(middleware.CORSMiddleware(r)))
}
