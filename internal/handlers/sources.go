package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/indexer"
)

// SourcesHandler handles source ingestion and removal.
type SourcesHandler struct {
	pipeline *indexer.Pipeline
}

// NewSourcesHandler creates a new SourcesHandler.
func NewSourcesHandler(pipeline *indexer.Pipeline) *SourcesHandler {
	return &SourcesHandler{pipeline: pipeline}
}

// IngestRequest is the HTTP payload for adding a source to a notebook.
type IngestRequest struct {
	SourceID string `json:"source_id,omitempty"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text,omitempty"`
	Markdown bool   `json:"markdown,omitempty"`
	Pages    []struct {
		Number int    `json:"number"`
		Text   string `json:"text"`
	} `json:"pages,omitempty"`
}

// SourceResponse describes an ingested source.
type SourceResponse struct {
	ID         string    `json:"id"`
	NotebookID string    `json:"notebook_id"`
	Title      string    `json:"title"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ingest handles POST /api/notebooks/{notebookID}/sources.
func (h *SourcesHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" && len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "Text or pages are required")
		return
	}

	ingest := indexer.IngestRequest{
		NotebookID: notebookID,
		SourceID:   req.SourceID,
		Title:      req.Title,
		Text:       req.Text,
		Markdown:   req.Markdown,
	}
	for _, p := range req.Pages {
		ingest.Pages = append(ingest.Pages, indexer.Page{Number: p.Number, Text: p.Text})
	}

	source, err := h.pipeline.IngestSource(ctx, ingest)
	if err != nil {
		logger.ErrorContext(ctx, "failed to ingest source", "notebook_id", notebookID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to ingest source")
		return
	}

	writeJSON(w, http.StatusCreated, SourceResponse{
		ID:         source.ID,
		NotebookID: source.NotebookID,
		Title:      source.Title,
		UpdatedAt:  source.UpdatedAt,
	})
}

// Delete handles DELETE /api/notebooks/{notebookID}/sources/{sourceID}.
func (h *SourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")
	sourceID := chi.URLParam(r, "sourceID")

	if err := h.pipeline.DeleteSource(ctx, notebookID, sourceID); err != nil {
		logger.ErrorContext(ctx, "failed to delete source", "notebook_id", notebookID, "source_id", sourceID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete source")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
