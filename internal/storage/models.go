package storage

import "time"

// NotebookRecord is a notebook row: a named container of sources.
type NotebookRecord struct {
	ID        string // UUID
	Title     string
	CreatedAt time.Time
}

// SourceRecord is a source row: one ingested document's metadata and raw
// text. The chunk+vector records for the source live in the vector store
// shard; the text kept here feeds recommendation excerpts and non-RAG
// fallbacks.
type SourceRecord struct {
	ID         string // UUID, shared with the shard file name
	NotebookID string
	Title      string
	Text       string
	UpdatedAt  time.Time
}
