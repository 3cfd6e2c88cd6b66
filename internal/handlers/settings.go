package handlers

import (
	"encoding/json"
	"net/http"

	"notebook-ai/internal/config"
	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/embed"
)

// SettingsHandler exposes the embedding mode for inspection and change.
type SettingsHandler struct {
	factory *embed.Factory
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(factory *embed.Factory) *SettingsHandler {
	return &SettingsHandler{factory: factory}
}

// EmbeddingSettingsResponse reports the configured mode and the tier that
// served the most recent embedding call.
type EmbeddingSettingsResponse struct {
	Mode        string `json:"mode"`
	ActiveModel string `json:"active_model"`
}

// Get handles GET /api/settings/embedding.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, EmbeddingSettingsResponse{
		Mode:        string(h.factory.Mode()),
		ActiveModel: h.factory.ActiveModel(),
	})
}

// Update handles PUT /api/settings/embedding. Mode changes take effect on the
// next embedding call; existing shards are not re-embedded.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mode, err := config.ParseEmbeddingMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Mode must be auto, local or remote")
		return
	}

	h.factory.SetMode(mode)
	logger.InfoContext(ctx, "embedding mode updated", "mode", mode)
	writeJSON(w, http.StatusOK, EmbeddingSettingsResponse{
		Mode:        string(mode),
		ActiveModel: h.factory.ActiveModel(),
	})
}
