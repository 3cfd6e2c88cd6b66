package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_notebook_store.go -package=mocks notebook-ai/internal/storage NotebookStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// NotebookStore defines the interface for notebook metadata operations.
type NotebookStore interface {
	// Upsert inserts a notebook or updates its title.
	Upsert(ctx context.Context, notebook *NotebookRecord) error
	// GetByID gets a notebook by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*NotebookRecord, error)
	// ListAll returns all notebooks ordered by title.
	ListAll(ctx context.Context) ([]NotebookRecord, error)
	// Delete removes a notebook and, via cascade, its sources. No-op if absent.
	Delete(ctx context.Context, id string) error
}

// NotebookRepo provides methods for notebook operations.
// It implements the NotebookStore interface.
type NotebookRepo struct {
	db *sql.DB
}

// NewNotebookRepo creates a new NotebookRepo.
func NewNotebookRepo(db *sql.DB) *NotebookRepo {
	return &NotebookRepo{db: db}
}

// Upsert inserts a notebook or updates its title.
func (r *NotebookRepo) Upsert(ctx context.Context, notebook *NotebookRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notebooks (id, title) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title`,
		notebook.ID, notebook.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert notebook: %w", err)
	}
	return nil
}

// GetByID gets a notebook by ID. Returns ErrNotFound if not found.
func (r *NotebookRepo) GetByID(ctx context.Context, id string) (*NotebookRecord, error) {
	var notebook NotebookRecord
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM notebooks WHERE id = ?", id,
	).Scan(&notebook.ID, &notebook.Title, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query notebook: %w", err)
	}

	notebook.CreatedAt, err = parseSQLiteTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	return &notebook, nil
}

// ListAll returns all notebooks ordered by title.
func (r *NotebookRepo) ListAll(ctx context.Context) ([]NotebookRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM notebooks ORDER BY title",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notebooks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var notebooks []NotebookRecord
	for rows.Next() {
		var notebook NotebookRecord
		var createdAtStr string
		if err := rows.Scan(&notebook.ID, &notebook.Title, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan notebook: %w", err)
		}
		notebook.CreatedAt, err = parseSQLiteTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		notebooks = append(notebooks, notebook)
	}

	return notebooks, rows.Err()
}

// Delete removes a notebook and, via foreign-key cascade, its sources.
func (r *NotebookRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM notebooks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete notebook: %w", err)
	}
	return nil
}

// parseSQLiteTime parses the DATETIME strings SQLite hands back; the format
// varies with how the value was written.
func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
