package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"notesvc/config"
	"notesvc/config/database"
	"notesvc/internal/note/model"
	"notesvc/internal/note/repository"
	"notesvc/socket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []socket.Event
}

func (p *recordingPublisher) Publish(evt socket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newService(t *testing.T) (*NoteService, *recordingPublisher) {
	t.Helper()
	db, err := database.Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, DSN: config.MemoryDSN})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewNoteRepository(db, repository.SQLite)
	require.NoError(t, repo.Initialize(context.Background()))

	pub := &recordingPublisher{}
	return NewNoteService(repo, pub), pub
}

func strPtr(s string) *string { return &s }

func TestCreateNotePublishesCreatedNote(t *testing.T) {
	svc, pub := newService(t)

	notes, err := svc.CreateNote(context.Background(), model.CreateNoteRequest{Content: strPtr("hello")})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "hello", notes[0].Content)

	require.Equal(t, []string{socket.NoteCreatedType}, pub.types())
	var published model.Note
	require.NoError(t, json.Unmarshal(pub.events[0].Payload, &published))
	assert.Equal(t, notes[0], published)
	assert.Equal(t, notes[0].ID, pub.events[0].NoteID)
}

func TestCreateNoteMissingContent(t *testing.T) {
	svc, pub := newService(t)

	_, err := svc.CreateNote(context.Background(), model.CreateNoteRequest{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content", verr.Field)
	assert.Empty(t, pub.types())
}

func TestCreateNoteEmptyContentIsAllowed(t *testing.T) {
	svc, _ := newService(t)

	notes, err := svc.CreateNote(context.Background(), model.CreateNoteRequest{Content: strPtr("")})
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestCreateNoteDuplicate(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	_, err := svc.CreateNote(ctx, model.CreateNoteRequest{Content: strPtr("a")})
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, model.CreateNoteRequest{Content: strPtr("a")})
	assert.ErrorIs(t, err, model.ErrDuplicateContent)

	assert.Equal(t, []string{socket.NoteCreatedType}, pub.types())
}

func TestGetNoteRejectsNonNumericID(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetNote(context.Background(), "abc")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestDeleteNotePublishesOnlyWhenRowRemoved(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	notes, err := svc.CreateNote(ctx, model.CreateNoteRequest{Content: strPtr("gone")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(ctx, "999"))
	require.NoError(t, svc.DeleteNote(ctx, strconv.FormatInt(notes[0].ID, 10)))

	assert.Equal(t, []string{socket.NoteCreatedType, socket.NoteDeletedType}, pub.types())
}

func TestDeleteNotesIsIdempotent(t *testing.T) {
	svc, pub := newService(t)

	require.NoError(t, svc.DeleteNotes(context.Background()))
	require.NoError(t, svc.DeleteNotes(context.Background()))
	assert.Equal(t, []string{socket.NotesClearedType, socket.NotesClearedType}, pub.types())
}

func TestNilPublisherIsAllowed(t *testing.T) {
	svc, _ := newService(t)
	svc.Events = nil

	_, err := svc.CreateNote(context.Background(), model.CreateNoteRequest{Content: strPtr("quiet")})
	assert.NoError(t, err)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "-3", want: -3},
		{raw: "", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: "12abc", wantErr: true},
		{raw: "99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

type failingStore struct{ err error }

func (f failingStore) CreateAndList(context.Context, string) (model.Note, []model.Note, error) {
	return model.Note{}, nil, f.err
}
func (f failingStore) ListAll(context.Context) ([]model.Note, error)        { return nil, f.err }
func (f failingStore) GetByID(context.Context, int64) ([]model.Note, error) { return nil, f.err }
func (f failingStore) DeleteAll(context.Context) (int64, error)             { return 0, f.err }
func (f failingStore) DeleteByID(context.Context, int64) (int64, error)     { return 0, f.err }
func (f failingStore) Ping(context.Context) error                           { return f.err }

func TestStoreFailuresPropagate(t *testing.T) {
	boom := &model.StorageError{Op: "any", Err: errors.New("disk full")}
	pub := &recordingPublisher{}
	svc := NewNoteService(failingStore{err: boom}, pub)
	ctx := context.Background()

	_, err := svc.CreateNote(ctx, model.CreateNoteRequest{Content: strPtr("x")})
	assert.ErrorIs(t, err, boom)
	_, err = svc.ListNotes(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.GetNote(ctx, "1")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.DeleteNotes(ctx), boom)
	assert.ErrorIs(t, svc.DeleteNote(ctx, "1"), boom)
	assert.ErrorIs(t, svc.Health(ctx), boom)

	assert.Empty(t, pub.types(), "failed mutations must not publish")
}
