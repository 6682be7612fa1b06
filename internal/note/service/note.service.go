package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"notesvc/internal/note/model"
	"notesvc/socket"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateAndList(ctx context.Context, content string) (model.Note, []model.Note, error)
	ListAll(ctx context.Context) ([]model.Note, error)
	GetByID(ctx context.Context, id int64) ([]model.Note, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	Ping(ctx context.Context) error
}

// Publisher receives an event after every successful mutation.
type Publisher interface {
	Publish(evt socket.Event)
}

type NoteService struct {
	Repo   Store
	Events Publisher
}

// NewNoteService wires a store and an optional change-feed publisher.
func NewNoteService(repo Store, events Publisher) *NoteService {
	return &NoteService{Repo: repo, Events: events}
}

// CreateNote stores a note and returns the full list including it.
func (s *NoteService) CreateNote(ctx context.Context, req model.CreateNoteRequest) ([]model.Note, error) {
	if req.Content == nil {
		return nil, &model.ValidationError{Field: "content", Reason: "missing"}
	}

	created, notes, err := s.Repo.CreateAndList(ctx, *req.Content)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(created)
	if err == nil {
		s.publish(socket.Event{Type: socket.NoteCreatedType, NoteID: created.ID, Payload: payload})
	}
	return notes, nil
}

func (s *NoteService) ListNotes(ctx context.Context) ([]model.Note, error) {
	return s.Repo.ListAll(ctx)
}

// GetNote returns zero or one notes for the raw path id.
func (s *NoteService) GetNote(ctx context.Context, rawID string) ([]model.Note, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *NoteService) DeleteNotes(ctx context.Context) error {
	if _, err := s.Repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.publish(socket.Event{Type: socket.NotesClearedType})
	return nil
}

// DeleteNote removes the note with the raw path id. A missing note is not an error.
func (s *NoteService) DeleteNote(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}
	affected, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publish(socket.Event{Type: socket.NoteDeletedType, NoteID: id})
	}
	return nil
}

func (s *NoteService) Health(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

func (s *NoteService) publish(evt socket.Event) {
	if s.Events != nil {
		s.Events.Publish(evt)
	}
}

// ParseID converts an external id to the store's integer key.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not an integer", raw)}
	}
	return id, nil
}
