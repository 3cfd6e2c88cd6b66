package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_source_store.go -package=mocks notebook-ai/internal/storage SourceStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SourceStore defines the interface for source metadata operations. The
// retrieval engine consumes it as a read-only title lookup; the ingestion
// pipeline writes through it.
type SourceStore interface {
	// Upsert inserts a source or replaces its title and text.
	Upsert(ctx context.Context, source *SourceRecord) error
	// GetByID gets a source by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*SourceRecord, error)
	// ListByNotebook returns all sources in a notebook ordered by title.
	ListByNotebook(ctx context.Context, notebookID string) ([]SourceRecord, error)
	// TitlesByIDs returns a sourceID → title map for the given IDs. IDs with
	// no row are simply absent from the map.
	TitlesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	// Delete removes a source row. No-op if absent.
	Delete(ctx context.Context, id string) error
}

// SourceRepo provides methods for source operations.
// It implements the SourceStore interface.
type SourceRepo struct {
	db *sql.DB
}

// NewSourceRepo creates a new SourceRepo.
func NewSourceRepo(db *sql.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// Upsert inserts a source or replaces its title and text.
func (r *SourceRepo) Upsert(ctx context.Context, source *SourceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sources (id, notebook_id, title, text, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, text = excluded.text, updated_at = CURRENT_TIMESTAMP`,
		source.ID, source.NotebookID, source.Title, source.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

// GetByID gets a source by ID. Returns ErrNotFound if not found.
func (r *SourceRepo) GetByID(ctx context.Context, id string) (*SourceRecord, error) {
	var source SourceRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, notebook_id, title, text, updated_at FROM sources WHERE id = ?", id,
	).Scan(&source.ID, &source.NotebookID, &source.Title, &source.Text, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	source.UpdatedAt, err = parseSQLiteTime(updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// ListByNotebook returns all sources in a notebook ordered by title.
func (r *SourceRepo) ListByNotebook(ctx context.Context, notebookID string) ([]SourceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, notebook_id, title, text, updated_at FROM sources WHERE notebook_id = ? ORDER BY title",
		notebookID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sources []SourceRecord
	for rows.Next() {
		var source SourceRecord
		var updatedAtStr string
		if err := rows.Scan(&source.ID, &source.NotebookID, &source.Title, &source.Text, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		source.UpdatedAt, err = parseSQLiteTime(updatedAtStr)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// TitlesByIDs returns a sourceID → title map for the given IDs.
func (r *SourceRepo) TitlesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, title FROM sources WHERE id IN (%s)", placeholders), args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query source titles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan source title: %w", err)
		}
		titles[id] = title
	}

	return titles, rows.Err()
}

// Delete removes a source row. No-op if absent.
func (r *SourceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return nil
}
