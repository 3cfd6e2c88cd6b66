package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks notebook-ai/internal/rag Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_text_generator.go -package=mocks notebook-ai/internal/rag TextGenerator

import "context"

// Embedder embeds query strings. Defined from the engine's perspective
// (consumer-first) so tests can inject fakes.
type Embedder interface {
	// EmbedQuery converts a single query string to a vector.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TextGenerator is the pluggable text-generation capability used for the two
// assist calls: sub-query decomposition and the sufficiency judgment. It is
// never required for retrieval itself; every failure here degrades to a
// simpler path.
type TextGenerator interface {
	// GenerateText returns the model reply for a single prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// QueryRequest represents a retrieval request against one notebook.
type QueryRequest struct {
	// NotebookID scopes the search.
	NotebookID string `json:"notebook_id"`
	// Question is the user's question.
	Question string `json:"question"`
	// SourceIDs optionally restricts the search to a set of sources.
	SourceIDs []string `json:"source_ids,omitempty"`
	// TitleMap optionally supplies sourceID → title for citation display.
	// When nil the engine resolves titles from the metadata store.
	TitleMap map[string]string `json:"-"`
	// Agentic enables the multi-query retrieval mode.
	Agentic bool `json:"agentic,omitempty"`
}

// Citation is a display-oriented reference back to the source chunk that
// grounded part of the context. Built fresh per query, never persisted.
type Citation struct {
	SourceID    string `json:"source_id"`
	SourceTitle string `json:"source_title"`
	// Snippet is the chunk text truncated to 200 characters.
	Snippet    string `json:"snippet"`
	PageNumber int    `json:"page_number,omitempty"`
}

// QueryResponse carries the grounded context and its citations.
type QueryResponse struct {
	Context   string     `json:"context"`
	Citations []Citation `json:"citations"`
	// SubQueries lists the search queries used in agentic mode, for observability.
	SubQueries []string `json:"sub_queries,omitempty"`
}
