package recommend

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks notebook-ai/internal/recommend Embedder

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/storage"
	"notebook-ai/internal/vectorstore"
)

const (
	// excerptChars is how much of a source's text represents it for matching.
	excerptChars = 2000
	// overFetchFactor pads the search limit so deduplication by source still
	// leaves enough distinct sources.
	overFetchFactor = 3
)

// Embedder embeds the representative excerpt of a source.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Recommendation is a related source in another notebook, ranked by the best
// similarity any of its chunks achieved.
type Recommendation struct {
	NotebookID    string  `json:"notebook_id"`
	NotebookTitle string  `json:"notebook_title"`
	SourceID      string  `json:"source_id"`
	SourceTitle   string  `json:"source_title"`
	Score         float32 `json:"score"`
}

// Recommender surfaces sources in other notebooks related to a given source.
type Recommender struct {
	embedder     Embedder
	store        vectorstore.VectorStore
	notebookRepo storage.NotebookStore
	sourceRepo   storage.SourceStore
}

// NewRecommender creates a cross-notebook recommender.
func NewRecommender(
	embedder Embedder,
	store vectorstore.VectorStore,
	notebookRepo storage.NotebookStore,
	sourceRepo storage.SourceStore,
) *Recommender {
	return &Recommender{
		embedder:     embedder,
		store:        store,
		notebookRepo: notebookRepo,
		sourceRepo:   sourceRepo,
	}
}

// FindRelatedSources embeds a representative excerpt of the source and ranks
// sources in every other notebook by their best-matching chunk.
func (r *Recommender) FindRelatedSources(ctx context.Context, notebookID, sourceID string, limit int) ([]Recommendation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	source, err := r.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}

	excerpt := source.Text
	if len(excerpt) > excerptChars {
		cut := excerptChars
		// Back up to a rune boundary so the excerpt stays valid UTF-8
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}
	if excerpt == "" {
		return []Recommendation{}, nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, excerpt)
	if err != nil {
		return nil, fmt.Errorf("failed to embed source excerpt: %w", err)
	}

	notebooks, err := r.notebookRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notebooks: %w", err)
	}

	notebookTitles := make(map[string]string, len(notebooks))
	var otherIDs []string
	for _, nb := range notebooks {
		notebookTitles[nb.ID] = nb.Title
		if nb.ID != notebookID {
			otherIDs = append(otherIDs, nb.ID)
		}
	}
	if len(otherIDs) == 0 {
		return []Recommendation{}, nil
	}

	results, err := r.store.SearchMultiple(ctx, otherIDs, vector, limit*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to search notebooks: %w", err)
	}

	// Dedup by source, keeping the best chunk score per source.
	type hit struct {
		notebookID string
		score      float32
	}
	bySource := make(map[string]hit)
	for _, res := range results {
		if existing, ok := bySource[res.SourceID]; !ok || res.Score > existing.score {
			bySource[res.SourceID] = hit{notebookID: res.NotebookID, score: res.Score}
		}
	}

	sourceIDs := make([]string, 0, len(bySource))
	for id := range bySource {
		sourceIDs = append(sourceIDs, id)
	}
	sourceTitles, err := r.sourceRepo.TitlesByIDs(ctx, sourceIDs)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve source titles for recommendations", "error", err)
		sourceTitles = map[string]string{}
	}

	recommendations := make([]Recommendation, 0, len(bySource))
	for id, h := range bySource {
		recommendations = append(recommendations, Recommendation{
			NotebookID:    h.notebookID,
			NotebookTitle: notebookTitles[h.notebookID],
			SourceID:      id,
			SourceTitle:   sourceTitles[id],
			Score:         h.score,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].SourceID < recommendations[j].SourceID
	})
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}
