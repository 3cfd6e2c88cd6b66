package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/storage"
	"notebook-ai/internal/vectorstore"
)

const (
	// standardLimit is the result count for single-query retrieval.
	standardLimit = 8
	// subQueryLimit is the per-sub-query result count in agentic mode.
	subQueryLimit = 6
	// contextWindow is the merged result count assembled into context.
	contextWindow = 8
	// expandedWindow is the context size after a sufficiency expansion.
	expandedWindow = 12
	// snippetMaxChars bounds citation snippets.
	snippetMaxChars = 200
	// minJudgeableContext is the context length under which the sufficiency
	// check is skipped outright: such context is used as-is, with no model
	// call and no expansion.
	minJudgeableContext = 200
	// defaultMaxRefinements bounds the retrieval-refinement loop. One pass
	// means at most one context expansion, never a recursive widen loop.
	defaultMaxRefinements = 1
)

// Engine orchestrates retrieval: embed the question, search the notebook's
// shards, assemble grounded context and citations.
type Engine interface {
	// Query runs standard or agentic retrieval per the request.
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
}

// engine implements Engine.
type engine struct {
	embedder       Embedder
	store          vectorstore.VectorStore
	sourceRepo     storage.SourceStore
	generator      TextGenerator
	maxRefinements int
}

// NewEngine creates a retrieval engine. generator may be nil, which disables
// the agentic assist calls and degrades agentic mode to single-query
// behavior with merge semantics intact.
func NewEngine(
	embedder Embedder,
	store vectorstore.VectorStore,
	sourceRepo storage.SourceStore,
	generator TextGenerator,
) Engine {
	return &engine{
		embedder:       embedder,
		store:          store,
		sourceRepo:     sourceRepo,
		generator:      generator,
		maxRefinements: defaultMaxRefinements,
	}
}

// Query runs retrieval for a question against one notebook.
func (e *engine) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	if req.Question == "" {
		return QueryResponse{}, fmt.Errorf("question is required")
	}
	if req.NotebookID == "" {
		return QueryResponse{}, fmt.Errorf("notebook id is required")
	}

	if req.Agentic {
		return e.queryAgentic(ctx, req)
	}
	return e.queryStandard(ctx, req)
}

// queryStandard embeds the question and searches once.
func (e *engine) queryStandard(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	vector, err := e.embedder.EmbedQuery(ctx, req.Question)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := e.store.Search(ctx, req.NotebookID, vector, standardLimit, req.SourceIDs)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("failed to search vectors: %w", err)
	}

	titles := e.resolveTitles(ctx, req.TitleMap, results)
	return QueryResponse{
		Context:   buildContext(results, titles),
		Citations: buildCitations(results, titles),
	}, nil
}

// queryAgentic decomposes the question into sub-queries, searches each,
// merges by max score and widens the context window once if a judge finds
// the initial context insufficient.
func (e *engine) queryAgentic(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	subQueries := e.generateSubQueries(ctx, req.Question)

	merged, err := e.searchSubQueries(ctx, req, subQueries)
	if err != nil {
		return QueryResponse{}, err
	}

	logger.InfoContext(ctx, "agentic retrieval merged",
		"notebook_id", req.NotebookID, "sub_queries", len(subQueries), "merged_results", len(merged))

	top := merged
	if len(top) > contextWindow {
		top = top[:contextWindow]
	}

	titles := e.resolveTitles(ctx, req.TitleMap, merged)
	contextText := buildContext(top, titles)

	// Bounded refinement: widen the window at most maxRefinements times when
	// the judge deems the context insufficient. Context under the judgeable
	// threshold is kept as-is without a model call, and judge failures keep
	// whatever context is already assembled.
	for i := 0; i < e.maxRefinements; i++ {
		if len(merged) <= contextWindow {
			break
		}
		if len(contextText) < minJudgeableContext {
			break
		}
		if e.contextSufficient(ctx, req.Question, contextText) {
			break
		}
		wider := merged
		if len(wider) > expandedWindow {
			wider = wider[:expandedWindow]
		}
		contextText = buildContext(wider, titles)
		logger.InfoContext(ctx, "context window expanded", "from", len(top), "to", len(wider))
	}

	// Citations always come from the top results, regardless of expansion,
	// to bound the citation list.
	return QueryResponse{
		Context:    contextText,
		Citations:  buildCitations(top, titles),
		SubQueries: subQueries,
	}, nil
}

// searchSubQueries embeds and searches each sub-query concurrently and merges
// results by chunk id, keeping the maximum score per chunk. Max is
// commutative, so the merge is safe under any completion order. Individual
// sub-query failures are logged and skipped; if every sub-query fails the
// first error propagates so callers can fall back to a non-RAG path.
func (e *engine) searchSubQueries(ctx context.Context, req QueryRequest, subQueries []string) ([]vectorstore.SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		byID     = make(map[string]vectorstore.SearchResult)
		firstErr error
		failures int
	)

	for _, q := range subQueries {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()

			vector, err := e.embedder.EmbedQuery(ctx, query)
			if err == nil {
				var results []vectorstore.SearchResult
				results, err = e.store.Search(ctx, req.NotebookID, vector, subQueryLimit, req.SourceIDs)
				if err == nil {
					mu.Lock()
					for _, r := range results {
						if existing, ok := byID[r.ID]; !ok || r.Score > existing.Score {
							byID[r.ID] = r
						}
					}
					mu.Unlock()
					return
				}
			}

			logger.WarnContext(ctx, "sub-query retrieval failed", "query", query, "error", err)
			mu.Lock()
			failures++
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}(q)
	}
	wg.Wait()

	if failures == len(subQueries) && firstErr != nil {
		return nil, fmt.Errorf("retrieval failed for all sub-queries: %w", firstErr)
	}

	merged := make([]vectorstore.SearchResult, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ID < merged[j].ID
	})
	return merged, nil
}

// resolveTitles returns a sourceID → title map for the results, preferring a
// caller-provided map and falling back to the metadata store. A failed lookup
// degrades to empty titles rather than failing the query.
func (e *engine) resolveTitles(ctx context.Context, provided map[string]string, results []vectorstore.SearchResult) map[string]string {
	if provided != nil {
		return provided
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, r := range results {
		if _, ok := seen[r.SourceID]; !ok {
			seen[r.SourceID] = struct{}{}
			ids = append(ids, r.SourceID)
		}
	}

	titles, err := e.sourceRepo.TitlesByIDs(ctx, ids)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to resolve source titles", "error", err)
		return map[string]string{}
	}
	return titles
}

// buildContext formats results as "[Source N: Title pX]" blocks in rank order.
func buildContext(results []vectorstore.SearchResult, titles map[string]string) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := titles[r.SourceID]
		if title == "" {
			title = "Unknown Source"
		}
		if r.PageNumber > 0 {
			b.WriteString(fmt.Sprintf("[Source %d: %s p%d]\n", i+1, title, r.PageNumber))
		} else {
			b.WriteString(fmt.Sprintf("[Source %d: %s]\n", i+1, title))
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// buildCitations mirrors the results into display citations with truncated snippets.
func buildCitations(results []vectorstore.SearchResult, titles map[string]string) []Citation {
	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		title := titles[r.SourceID]
		if title == "" {
			title = "Unknown Source"
		}
		citations = append(citations, Citation{
			SourceID:    r.SourceID,
			SourceTitle: title,
			Snippet:     truncate(r.Text, snippetMaxChars),
			PageNumber:  r.PageNumber,
		})
	}
	return citations
}

// truncate cuts s to at most max bytes, backing up to a rune boundary so the
// snippet stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
