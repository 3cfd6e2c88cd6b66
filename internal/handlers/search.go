package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/embed"
	"notebook-ai/internal/vectorstore"
)

const defaultSearchLimit = 8

// SearchHandler exposes raw similarity search over one notebook, without the
// retrieval engine's context assembly.
type SearchHandler struct {
	embedder *embed.Factory
	store    vectorstore.VectorStore
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(embedder *embed.Factory, store vectorstore.VectorStore) *SearchHandler {
	return &SearchHandler{embedder: embedder, store: store}
}

// SearchRequest is the HTTP payload for a raw similarity search.
type SearchRequest struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit,omitempty"`
	SourceIDs []string `json:"source_ids,omitempty"`
}

// ServeHTTP handles POST /api/notebooks/{notebookID}/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := h.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to embed query")
		return
	}

	results, err := h.store.Search(ctx, notebookID, vector, limit, req.SourceIDs)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "notebook_id", notebookID, "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []vectorstore.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
