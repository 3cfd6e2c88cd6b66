package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notebook-ai/internal/embed"
	"notebook-ai/internal/handlers"
	"notebook-ai/internal/indexer"
	"notebook-ai/internal/rag"
	"notebook-ai/internal/recommend"
	"notebook-ai/internal/storage"
	"notebook-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine       rag.Engine
	Pipeline     *indexer.Pipeline
	Recommender  *recommend.Recommender
	Embedder     *embed.Factory
	Store        vectorstore.VectorStore
	NotebookRepo storage.NotebookStore
	SourceRepo   storage.SourceStore
	DataDir      string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	queryHandler := handlers.NewQueryHandler(deps.Engine)
	searchHandler := handlers.NewSearchHandler(deps.Embedder, deps.Store)
	sourcesHandler := handlers.NewSourcesHandler(deps.Pipeline)
	notebooksHandler := handlers.NewNotebooksHandler(deps.NotebookRepo, deps.SourceRepo, deps.Pipeline)
	relatedHandler := handlers.NewRelatedHandler(deps.Recommender)
	settingsHandler := handlers.NewSettingsHandler(deps.Embedder)
	healthHandler := handlers.NewHealthHandler(deps.DataDir, deps.Embedder)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Get("/settings/embedding", settingsHandler.Get)
		r.Put("/settings/embedding", settingsHandler.Update)

		r.Route("/notebooks", func(r chi.Router) {
			r.Get("/", notebooksHandler.List)

			r.Route("/{notebookID}", func(r chi.Router) {
				r.Delete("/", notebooksHandler.Delete)
				r.Method(http.MethodPost, "/query", queryHandler)
				r.Method(http.MethodPost, "/search", searchHandler)

				r.Route("/sources", func(r chi.Router) {
					r.Get("/", notebooksHandler.ListSources)
					r.Post("/", sourcesHandler.Ingest)
					r.Delete("/{sourceID}", sourcesHandler.Delete)
					r.Method(http.MethodGet, "/{sourceID}/related", relatedHandler)
				})
			})
		})
	})

	return r
}
