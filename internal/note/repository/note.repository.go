package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notesvc/internal/note/model"
	"notesvc/pkg/logger"

	"github.com/lib/pq"
	"github.com/ncruces/go-sqlite3"
)

const pqUniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NoteRepository is the single-table note store. It holds no state besides
// the shared database handle, so one instance serves every request.
type NoteRepository struct {
	DB      *sql.DB
	dialect Dialect
}

func NewNoteRepository(db *sql.DB, dialect Dialect) *NoteRepository {
	return &NoteRepository{DB: db, dialect: dialect}
}

// Initialize creates the notes table if it does not exist yet.
func (r *NoteRepository) Initialize(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, r.dialect.schema); err != nil {
		logger.Sugar.Errorf("Failed to initialize notes schema: %v", err)
		return &model.StorageError{Op: "initialize", Err: err}
	}
	return nil
}

// CreateAndList inserts a note and reads back the whole table in one
// transaction, so the returned list always contains the new row. The
// inserted row is returned on its own as well.
func (r *NoteRepository) CreateAndList(ctx context.Context, content string) (model.Note, []model.Note, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		logger.Sugar.Errorf("Failed to begin create transaction: %v", err)
		return model.Note{}, nil, &model.StorageError{Op: "create", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	created, err := r.create(ctx, tx, content)
	if err != nil {
		return model.Note{}, nil, err
	}
	notes, err := r.list(ctx, tx)
	if err != nil {
		return model.Note{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit create transaction: %v", err)
		return model.Note{}, nil, &model.StorageError{Op: "create", Err: err}
	}
	return created, notes, nil
}

func (r *NoteRepository) create(ctx context.Context, q querier, content string) (model.Note, error) {
	var n model.Note
	err := q.QueryRowContext(ctx, r.dialect.insert, content).Scan(&n.ID, &n.Content)
	if err != nil {
		if isUniqueViolation(err) {
			logger.Sugar.Warnf("Rejected duplicate note content: %v", err)
			return model.Note{}, fmt.Errorf("%w: %v", model.ErrDuplicateContent, err)
		}
		logger.Sugar.Errorf("Failed to create note: %v", err)
		return model.Note{}, &model.StorageError{Op: "create", Err: err}
	}
	return n, nil
}

// ListAll returns every note ordered by id. The result is never nil.
func (r *NoteRepository) ListAll(ctx context.Context) ([]model.Note, error) {
	return r.list(ctx, r.DB)
}

func (r *NoteRepository) list(ctx context.Context, q querier) ([]model.Note, error) {
	rows, err := q.QueryContext(ctx, r.dialect.selectAll)
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes: %v", err)
		return nil, &model.StorageError{Op: "list", Err: err}
	}
	return scanNotes(rows, "list")
}

// GetByID returns a slice holding the matching note, or an empty slice.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) ([]model.Note, error) {
	rows, err := r.DB.QueryContext(ctx, r.dialect.selectByID, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to get note %d: %v", id, err)
		return nil, &model.StorageError{Op: "get", Err: err}
	}
	return scanNotes(rows, "get")
}

// DeleteAll removes every note. Deleting from an empty table succeeds.
func (r *NoteRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec(ctx, "delete all", r.dialect.deleteAll)
}

// DeleteByID removes the note with the given id. A missing row is not an
// error; the affected count is 0.
func (r *NoteRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "delete", r.dialect.deleteByID, id)
}

func (r *NoteRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *NoteRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to %s notes: %v", op, err)
		return 0, &model.StorageError{Op: op, Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logger.Sugar.Errorf("Failed to read affected rows for %s: %v", op, err)
		return 0, &model.StorageError{Op: op, Err: err}
	}
	return affected, nil
}

func scanNotes(rows *sql.Rows, op string) ([]model.Note, error) {
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Content); err != nil {
			logger.Sugar.Errorf("Failed to scan note row: %v", err)
			return nil, &model.StorageError{Op: op, Err: err}
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate note rows: %v", err)
		return nil, &model.StorageError{Op: op, Err: err}
	}
	return notes, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
