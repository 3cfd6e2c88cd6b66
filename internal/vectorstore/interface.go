package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks notebook-ai/internal/vectorstore VectorStore

import "context"

// Record is one chunk+vector entry within a shard.
type Record struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"sourceId"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"vector"`
	ChunkIndex int       `json:"chunkIndex"`
	PageNumber int       `json:"pageNumber,omitempty"`
}

// SearchResult is a ranked hit from a similarity search.
type SearchResult struct {
	ID         string
	NotebookID string
	SourceID   string
	Text       string
	Score      float32
	ChunkIndex int
	PageNumber int
}

// VectorStore persists chunk+vector records per (notebook, source) and serves
// brute-force cosine similarity search over them.
type VectorStore interface {
	// AddDocuments writes the shard for a source, replacing any prior shard
	// for the same (notebook, source) pair wholesale. model identifies the
	// embedding tier that produced the vectors.
	AddDocuments(ctx context.Context, notebookID, sourceID, model string, records []Record) error

	// Search ranks every record in the notebook against the query vector and
	// returns the top limit results, optionally restricted to the given
	// source IDs.
	Search(ctx context.Context, notebookID string, query []float32, limit int, sourceIDs []string) ([]SearchResult, error)

	// SearchMultiple performs the same ranking across several notebooks,
	// returning one globally ranked list.
	SearchMultiple(ctx context.Context, notebookIDs []string, query []float32, limit int) ([]SearchResult, error)

	// DeleteSource removes the shard for a source. Not an error if absent.
	DeleteSource(ctx context.Context, notebookID, sourceID string) error

	// DeleteNotebook removes all shards under a notebook. Not an error if absent.
	DeleteNotebook(ctx context.Context, notebookID string) error
}
