package vectorstore

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}

func record(id, sourceID string, vector []float32, chunkIndex int) Record {
	return Record{ID: id, SourceID: sourceID, Text: "text for " + id, Vector: vector, ChunkIndex: chunkIndex}
}

func TestFileStore_AddAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []Record{
		record("r1", "src-1", []float32{1, 0, 0}, 0),
		record("r2", "src-1", []float32{0, 1, 0}, 1),
	}
	if err := store.AddDocuments(ctx, "nb-1", "src-1", "hash-fallback", records); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	results, err := store.Search(ctx, "nb-1", []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() = %d results, want 2", len(results))
	}
	if results[0].ID != "r1" {
		t.Errorf("top result = %s, want r1", results[0].ID)
	}
	if math.Abs(float64(results[0].Score)-1.0) > 1e-6 {
		t.Errorf("top score = %v, want 1.0", results[0].Score)
	}
	if results[0].NotebookID != "nb-1" || results[0].SourceID != "src-1" {
		t.Errorf("result identity = %s/%s, want nb-1/src-1", results[0].NotebookID, results[0].SourceID)
	}
}

func TestFileStore_AddDocuments_ReplacesShard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []Record{record("old", "src-1", []float32{1, 0}, 0)}
	if err := store.AddDocuments(ctx, "nb-1", "src-1", "m", first); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	second := []Record{record("new", "src-1", []float32{1, 0}, 0)}
	if err := store.AddDocuments(ctx, "nb-1", "src-1", "m", second); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	results, err := store.Search(ctx, "nb-1", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("Search() = %v, want only the replacement record", results)
	}
}

func TestFileStore_AddDocuments_DimensionMismatchRejected(t *testing.T) {
	store := newTestStore(t)
	records := []Record{
		record("r1", "src-1", []float32{1, 0}, 0),
		record("r2", "src-1", []float32{1, 0, 0}, 1),
	}
	if err := store.AddDocuments(context.Background(), "nb-1", "src-1", "m", records); err == nil {
		t.Error("AddDocuments() expected error for mixed dimensions")
	}
}

func TestFileStore_AddDocuments_InvalidIDs(t *testing.T) {
	store := newTestStore(t)
	records := []Record{record("r1", "src", []float32{1}, 0)}

	tests := []struct {
		name       string
		notebookID string
		sourceID   string
	}{
		{name: "empty notebook", notebookID: "", sourceID: "src"},
		{name: "path traversal notebook", notebookID: "..", sourceID: "src"},
		{name: "separator in source", notebookID: "nb", sourceID: "a/b"},
		{name: "backslash in source", notebookID: "nb", sourceID: `a\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.AddDocuments(context.Background(), tt.notebookID, tt.sourceID, "m", records); err == nil {
				t.Error("AddDocuments() expected error for invalid identifier")
			}
		})
	}
}

func TestFileStore_Search_LimitAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddDocuments(ctx, "nb-1", "src-a", "m", []Record{
		record("a1", "src-a", []float32{1, 0}, 0),
		record("a2", "src-a", []float32{0.9, 0.1}, 1),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if err := store.AddDocuments(ctx, "nb-1", "src-b", "m", []Record{
		record("b1", "src-b", []float32{1, 0}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	// Limit truncates
	results, err := store.Search(ctx, "nb-1", []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search() = %d results, want 2 (limit)", len(results))
	}

	// Source filter restricts the scan
	results, err = store.Search(ctx, "nb-1", []float32{1, 0}, 10, []string{"src-b"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "b1" {
		t.Errorf("filtered Search() = %v, want only src-b records", results)
	}
}

func TestFileStore_Search_InvalidLimit(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Search(context.Background(), "nb-1", []float32{1}, 0, nil); err == nil {
		t.Error("Search() expected error for zero limit")
	}
}

func TestFileStore_Search_MissingNotebook(t *testing.T) {
	store := newTestStore(t)
	results, err := store.Search(context.Background(), "never-written", []float32{1}, 5, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() = %d results, want 0", len(results))
	}
}

func TestFileStore_Search_SkipsCorruptShard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddDocuments(ctx, "nb-1", "good", "m", []Record{
		record("g1", "good", []float32{1, 0}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.root, "nb-1", "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt shard: %v", err)
	}

	results, err := store.Search(ctx, "nb-1", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "g1" {
		t.Errorf("Search() = %v, want only the readable shard", results)
	}
}

func TestFileStore_Search_SkipsMismatchedDimension(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddDocuments(ctx, "nb-1", "dim2", "m2", []Record{
		record("d2", "dim2", []float32{1, 0}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if err := store.AddDocuments(ctx, "nb-1", "dim3", "m3", []Record{
		record("d3", "dim3", []float32{1, 0, 0}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	results, err := store.Search(ctx, "nb-1", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "d2" {
		t.Errorf("Search() = %v, want only dimension-matching shard", results)
	}
}

func TestFileStore_SearchMultiple(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddDocuments(ctx, "nb-1", "s1", "m", []Record{
		record("one", "s1", []float32{1, 0}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if err := store.AddDocuments(ctx, "nb-2", "s2", "m", []Record{
		record("two", "s2", []float32{0.6, 0.8}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}

	results, err := store.SearchMultiple(ctx, []string{"nb-1", "nb-2"}, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("SearchMultiple() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("SearchMultiple() = %d results, want 2", len(results))
	}
	if results[0].ID != "one" || results[0].NotebookID != "nb-1" {
		t.Errorf("top result = %s/%s, want one/nb-1", results[0].ID, results[0].NotebookID)
	}
	if results[1].NotebookID != "nb-2" {
		t.Errorf("second result notebook = %s, want nb-2", results[1].NotebookID)
	}
}

func TestFileStore_DeleteSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddDocuments(ctx, "nb-1", "src-1", "m", []Record{
		record("r1", "src-1", []float32{1}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if err := store.DeleteSource(ctx, "nb-1", "src-1"); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}

	results, err := store.Search(ctx, "nb-1", []float32{1}, 5, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() after delete = %d results, want 0", len(results))
	}

	// Deleting again is a no-op
	if err := store.DeleteSource(ctx, "nb-1", "src-1"); err != nil {
		t.Errorf("DeleteSource() on absent shard error = %v, want nil", err)
	}
}

func TestFileStore_DeleteNotebook(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddDocuments(ctx, "nb-1", "src-1", "m", []Record{
		record("r1", "src-1", []float32{1}, 0),
	}); err != nil {
		t.Fatalf("AddDocuments() error = %v", err)
	}
	if err := store.DeleteNotebook(ctx, "nb-1"); err != nil {
		t.Fatalf("DeleteNotebook() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.root, "nb-1")); !os.IsNotExist(err) {
		t.Error("notebook directory still exists after DeleteNotebook")
	}

	if err := store.DeleteNotebook(ctx, "never-existed"); err != nil {
		t.Errorf("DeleteNotebook() on absent notebook error = %v, want nil", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1, 0}, b: []float32{1}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
