package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/recommend"
	"notebook-ai/internal/storage"
)

const defaultRelatedLimit = 5

// RelatedHandler surfaces sources in other notebooks related to one source.
type RelatedHandler struct {
	recommender *recommend.Recommender
}

// NewRelatedHandler creates a new RelatedHandler.
func NewRelatedHandler(recommender *recommend.Recommender) *RelatedHandler {
	return &RelatedHandler{recommender: recommender}
}

// ServeHTTP handles GET /api/notebooks/{notebookID}/sources/{sourceID}/related.
func (h *RelatedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	notebookID := chi.URLParam(r, "notebookID")
	sourceID := chi.URLParam(r, "sourceID")

	limit := defaultRelatedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Limit must be a positive integer")
			return
		}
		limit = parsed
	}

	recommendations, err := h.recommender.FindRelatedSources(ctx, notebookID, sourceID, limit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Source not found")
			return
		}
		logger.ErrorContext(ctx, "failed to find related sources", "notebook_id", notebookID, "source_id", sourceID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to find related sources")
		return
	}
	writeJSON(w, http.StatusOK, recommendations)
}
