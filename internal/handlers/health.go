package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"notebook-ai/internal/embed"
)

// HealthHandler reports service health: data-dir writability and the
// embedding configuration currently in effect.
type HealthHandler struct {
	dataDir string
	factory *embed.Factory
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(dataDir string, factory *embed.Factory) *HealthHandler {
	return &HealthHandler{dataDir: dataDir, factory: factory}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status        string `json:"status"`
	EmbeddingMode string `json:"embedding_mode"`
	ActiveModel   string `json:"active_model"`
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	probe := filepath.Join(h.dataDir, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:        "unhealthy",
			EmbeddingMode: string(h.factory.Mode()),
			ActiveModel:   h.factory.ActiveModel(),
		})
		return
	}
	_ = os.Remove(probe)

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		EmbeddingMode: string(h.factory.Mode()),
		ActiveModel:   h.factory.ActiveModel(),
	})
}
