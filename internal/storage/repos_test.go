package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *NotebookRepo {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewNotebookRepo(db)
}

func TestNotebookRepo_UpsertAndGet(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &NotebookRecord{ID: "nb-1", Title: "Research"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "nb-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Research" {
		t.Errorf("Title = %q, want Research", got.Title)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want database timestamp")
	}

	// Upserting the same ID replaces the title
	if err := repo.Upsert(ctx, &NotebookRecord{ID: "nb-1", Title: "Renamed"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	got, err = repo.GetByID(ctx, "nb-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title after upsert = %q, want Renamed", got.Title)
	}
}

func TestNotebookRepo_GetByID_NotFound(t *testing.T) {
	repo := newTestDB(t)
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestNotebookRepo_ListAll(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	for _, nb := range []NotebookRecord{
		{ID: "nb-b", Title: "Beta"},
		{ID: "nb-a", Title: "Alpha"},
	} {
		nb := nb
		if err := repo.Upsert(ctx, &nb); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	notebooks, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(notebooks) != 2 {
		t.Fatalf("ListAll() = %d notebooks, want 2", len(notebooks))
	}
	if notebooks[0].Title != "Alpha" || notebooks[1].Title != "Beta" {
		t.Errorf("ListAll() order = [%s %s], want title order", notebooks[0].Title, notebooks[1].Title)
	}
}

func TestNotebookRepo_DeleteCascadesToSources(t *testing.T) {
	repo := newTestDB(t)
	sources := NewSourceRepo(repo.db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &NotebookRecord{ID: "nb-1", Title: "NB"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := sources.Upsert(ctx, &SourceRecord{ID: "src-1", NotebookID: "nb-1", Title: "Doc", Text: "body"}); err != nil {
		t.Fatalf("source Upsert() error = %v", err)
	}

	if err := repo.Delete(ctx, "nb-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := sources.GetByID(ctx, "src-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("source GetByID() after cascade = %v, want ErrNotFound", err)
	}
}

func TestSourceRepo_UpsertAndGet(t *testing.T) {
	repo := newTestDB(t)
	sources := NewSourceRepo(repo.db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &NotebookRecord{ID: "nb-1", Title: "NB"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := sources.Upsert(ctx, &SourceRecord{ID: "src-1", NotebookID: "nb-1", Title: "Doc A", Text: "original"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := sources.GetByID(ctx, "src-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Doc A" || got.Text != "original" || got.NotebookID != "nb-1" {
		t.Errorf("GetByID() = %+v, want stored fields", got)
	}

	// Re-ingest replaces title and text
	if err := sources.Upsert(ctx, &SourceRecord{ID: "src-1", NotebookID: "nb-1", Title: "Doc A v2", Text: "revised"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	got, err = sources.GetByID(ctx, "src-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Doc A v2" || got.Text != "revised" {
		t.Errorf("GetByID() after upsert = %+v, want replaced fields", got)
	}
}

func TestSourceRepo_ListByNotebook(t *testing.T) {
	repo := newTestDB(t)
	sources := NewSourceRepo(repo.db)
	ctx := context.Background()

	for _, id := range []string{"nb-1", "nb-2"} {
		if err := repo.Upsert(ctx, &NotebookRecord{ID: id, Title: id}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	for _, src := range []SourceRecord{
		{ID: "s1", NotebookID: "nb-1", Title: "Zebra", Text: "t"},
		{ID: "s2", NotebookID: "nb-1", Title: "Apple", Text: "t"},
		{ID: "s3", NotebookID: "nb-2", Title: "Other", Text: "t"},
	} {
		src := src
		if err := sources.Upsert(ctx, &src); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	got, err := sources.ListByNotebook(ctx, "nb-1")
	if err != nil {
		t.Fatalf("ListByNotebook() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByNotebook() = %d sources, want 2", len(got))
	}
	if got[0].Title != "Apple" || got[1].Title != "Zebra" {
		t.Errorf("ListByNotebook() order = [%s %s], want title order", got[0].Title, got[1].Title)
	}
}

func TestSourceRepo_TitlesByIDs(t *testing.T) {
	repo := newTestDB(t)
	sources := NewSourceRepo(repo.db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &NotebookRecord{ID: "nb-1", Title: "NB"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	for _, src := range []SourceRecord{
		{ID: "s1", NotebookID: "nb-1", Title: "First", Text: "t"},
		{ID: "s2", NotebookID: "nb-1", Title: "Second", Text: "t"},
	} {
		src := src
		if err := sources.Upsert(ctx, &src); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	titles, err := sources.TitlesByIDs(ctx, []string{"s1", "s2", "missing"})
	if err != nil {
		t.Fatalf("TitlesByIDs() error = %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("TitlesByIDs() = %d entries, want 2", len(titles))
	}
	if titles["s1"] != "First" || titles["s2"] != "Second" {
		t.Errorf("TitlesByIDs() = %v, want stored titles", titles)
	}
	if _, ok := titles["missing"]; ok {
		t.Error("TitlesByIDs() includes an entry for a missing ID")
	}
}

func TestSourceRepo_TitlesByIDs_Empty(t *testing.T) {
	repo := newTestDB(t)
	sources := NewSourceRepo(repo.db)

	titles, err := sources.TitlesByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("TitlesByIDs() error = %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("TitlesByIDs(nil) = %v, want empty map", titles)
	}
}

func TestSourceRepo_Delete(t *testing.T) {
	repo := newTestDB(t)
	sources := NewSourceRepo(repo.db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &NotebookRecord{ID: "nb-1", Title: "NB"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := sources.Upsert(ctx, &SourceRecord{ID: "s1", NotebookID: "nb-1", Title: "Doc", Text: "t"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := sources.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := sources.GetByID(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete = %v, want ErrNotFound", err)
	}

	// Deleting again is a no-op
	if err := sources.Delete(ctx, "s1"); err != nil {
		t.Errorf("Delete() on absent row error = %v, want nil", err)
	}
}
