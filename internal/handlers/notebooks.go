package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/indexer"
	"notebook-ai/internal/storage"
)

// NotebooksHandler handles notebook listing and removal.
type NotebooksHandler struct {
	notebookRepo storage.NotebookStore
	sourceRepo   storage.SourceStore
	pipeline     *indexer.Pipeline
}

// NewNotebooksHandler creates a new NotebooksHandler.
func NewNotebooksHandler(notebookRepo storage.NotebookStore, sourceRepo storage.SourceStore, pipeline *indexer.Pipeline) *NotebooksHandler {
	return &NotebooksHandler{notebookRepo: notebookRepo, sourceRepo: sourceRepo, pipeline: pipeline}
}

// NotebookResponse describes one notebook.
type NotebookResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NotebookSourceResponse describes one source inside a notebook listing.
type NotebookSourceResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List handles GET /api/notebooks.
func (h *NotebooksHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebooks, err := h.notebookRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list notebooks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list notebooks")
		return
	}

	resp := make([]NotebookResponse, 0, len(notebooks))
	for _, nb := range notebooks {
		resp = append(resp, NotebookResponse{ID: nb.ID, Title: nb.Title, CreatedAt: nb.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSources handles GET /api/notebooks/{notebookID}/sources.
func (h *NotebooksHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")

	sources, err := h.sourceRepo.ListByNotebook(ctx, notebookID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list sources", "notebook_id", notebookID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list sources")
		return
	}

	resp := make([]NotebookSourceResponse, 0, len(sources))
	for _, s := range sources {
		resp = append(resp, NotebookSourceResponse{ID: s.ID, Title: s.Title, UpdatedAt: s.UpdatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/notebooks/{notebookID}.
func (h *NotebooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")

	if err := h.pipeline.DeleteNotebook(ctx, notebookID); err != nil {
		logger.ErrorContext(ctx, "failed to delete notebook", "notebook_id", notebookID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete notebook")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
