package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/rag"
)

// QueryHandler handles retrieval queries against one notebook.
type QueryHandler struct {
	engine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest is the HTTP payload for retrieval queries.
type QueryRequest struct {
	Question  string   `json:"question"`
	SourceIDs []string `json:"source_ids,omitempty"`
	// Agentic defaults to true: conversational callers get the multi-query
	// pipeline unless they opt out.
	Agentic *bool `json:"agentic,omitempty"`
}

// QueryResponse is the HTTP payload carrying grounded context and citations.
type QueryResponse struct {
	Context    string         `json:"context"`
	Citations  []rag.Citation `json:"citations"`
	SubQueries []string       `json:"sub_queries,omitempty"`
}

// ServeHTTP handles POST /api/notebooks/{notebookID}/query.
//
// A retrieval failure resolves to empty context and citations rather than an
// error status, so callers can substitute raw source text or an apology
// message.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	agentic := true
	if req.Agentic != nil {
		agentic = *req.Agentic
	}

	resp, err := h.engine.Query(ctx, rag.QueryRequest{
		NotebookID: notebookID,
		Question:   req.Question,
		SourceIDs:  req.SourceIDs,
		Agentic:    agentic,
	})
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed, returning empty context", "notebook_id", notebookID, "error", err)
		writeJSON(w, http.StatusOK, QueryResponse{Context: "", Citations: []rag.Citation{}})
		return
	}

	if resp.Citations == nil {
		resp.Citations = []rag.Citation{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Context:    resp.Context,
		Citations:  resp.Citations,
		SubQueries: resp.SubQueries,
	})
}
