package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks notebook-ai/internal/indexer Embedder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"notebook-ai/internal/chunker"
	"notebook-ai/internal/contextutil"
	"notebook-ai/internal/storage"
	"notebook-ai/internal/vectorstore"
)

// Embedder converts text to vectors. Defined from the pipeline's perspective
// so tests can inject fakes.
type Embedder interface {
	// Embed converts texts to vectors, one per text, order-preserving.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// ActiveModel returns the tier identifier that served the last call.
	ActiveModel() string
}

// Page is a unit of pre-paginated source text. Parsers that know page
// boundaries (PDF extraction upstream) hand pages in; chunks inherit the page
// number they came from.
type Page struct {
	Number int
	Text   string
}

// IngestRequest describes one document to ingest into a notebook.
type IngestRequest struct {
	NotebookID string
	// SourceID is optional; a new UUID is assigned when empty. Passing an
	// existing ID re-ingests that source, replacing its shard wholesale.
	SourceID string
	Title    string
	// Text is the extracted document text. Ignored when Pages is set.
	Text string
	// Pages carries pre-paginated text; chunk page numbers come from here.
	Pages []Page
	// Markdown marks Text as markdown: the title is extracted from headings
	// and the markup is flattened before chunking.
	Markdown bool
}

// Pipeline turns raw source text into a persisted vector shard:
// chunk, embed, write shard, record metadata.
type Pipeline struct {
	notebookRepo storage.NotebookStore
	sourceRepo   storage.SourceStore
	embedder     Embedder
	store        vectorstore.VectorStore
	markdown     *markdownParser
	opts         chunker.Options
}

// NewPipeline creates a new ingestion pipeline with default chunk sizing.
func NewPipeline(
	notebookRepo storage.NotebookStore,
	sourceRepo storage.SourceStore,
	embedder Embedder,
	store vectorstore.VectorStore,
) *Pipeline {
	return &Pipeline{
		notebookRepo: notebookRepo,
		sourceRepo:   sourceRepo,
		embedder:     embedder,
		store:        store,
		markdown:     newMarkdownParser(),
		opts: chunker.Options{
			ChunkSize: chunker.DefaultChunkSize,
			Overlap:   chunker.DefaultOverlap,
		},
	}
}

// IngestSource chunks, embeds and persists one document. Re-ingesting an
// existing source replaces its prior shard entirely.
func (p *Pipeline) IngestSource(ctx context.Context, req IngestRequest) (*storage.SourceRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.NotebookID == "" {
		return nil, fmt.Errorf("notebook id is required")
	}

	sourceID := req.SourceID
	if sourceID == "" {
		sourceID = uuid.New().String()
	}

	title := req.Title
	text := req.Text
	if req.Markdown {
		fallback := title
		if fallback == "" {
			fallback = "Untitled Source"
		}
		extractedTitle, plain := p.markdown.Parse([]byte(req.Text), fallback)
		if title == "" {
			title = extractedTitle
		}
		text = plain
	}
	if title == "" {
		title = "Untitled Source"
	}
	if len(req.Pages) > 0 {
		text = joinPages(req.Pages)
	}

	if err := p.ensureNotebook(ctx, req.NotebookID); err != nil {
		return nil, err
	}

	chunks := p.chunkSource(req)
	if len(chunks) == 0 {
		// Nothing searchable; record the source but drop any stale shard so
		// search does not serve outdated chunks.
		logger.WarnContext(ctx, "source produced no chunks", "notebook_id", req.NotebookID, "source_id", sourceID)
		if err := p.store.DeleteSource(ctx, req.NotebookID, sourceID); err != nil {
			return nil, fmt.Errorf("failed to drop stale shard: %w", err)
		}
		return p.saveSource(ctx, req.NotebookID, sourceID, title, text)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:         uuid.New().String(),
			SourceID:   sourceID,
			Text:       c.Text,
			Vector:     vectors[i],
			ChunkIndex: c.Index,
			PageNumber: c.PageNumber,
		}
	}

	if err := p.store.AddDocuments(ctx, req.NotebookID, sourceID, p.embedder.ActiveModel(), records); err != nil {
		return nil, fmt.Errorf("failed to write shard: %w", err)
	}

	source, err := p.saveSource(ctx, req.NotebookID, sourceID, title, text)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "source ingested",
		"notebook_id", req.NotebookID, "source_id", sourceID, "title", title,
		"chunks", len(chunks), "model", p.embedder.ActiveModel())
	return source, nil
}

// chunkSource produces the chunk list for a request, assigning page numbers
// when pages are present. Chunk indexes stay strictly increasing across pages.
func (p *Pipeline) chunkSource(req IngestRequest) []chunker.Chunk {
	if len(req.Pages) == 0 {
		text := req.Text
		if req.Markdown {
			_, text = p.markdown.Parse([]byte(req.Text), "")
		}
		return chunker.Split(text, p.opts)
	}

	var all []chunker.Chunk
	for _, page := range req.Pages {
		for _, c := range chunker.Split(page.Text, p.opts) {
			c.Index = len(all)
			c.PageNumber = page.Number
			all = append(all, c)
		}
	}
	return all
}

func (p *Pipeline) ensureNotebook(ctx context.Context, notebookID string) error {
	_, err := p.notebookRepo.GetByID(ctx, notebookID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to check notebook: %w", err)
	}
	if err := p.notebookRepo.Upsert(ctx, &storage.NotebookRecord{ID: notebookID, Title: "Untitled Notebook"}); err != nil {
		return fmt.Errorf("failed to create notebook: %w", err)
	}
	return nil
}

func (p *Pipeline) saveSource(ctx context.Context, notebookID, sourceID, title, text string) (*storage.SourceRecord, error) {
	source := &storage.SourceRecord{
		ID:         sourceID,
		NotebookID: notebookID,
		Title:      title,
		Text:       text,
	}
	if err := p.sourceRepo.Upsert(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to save source: %w", err)
	}
	return source, nil
}

// DeleteSource removes a source's shard and metadata.
func (p *Pipeline) DeleteSource(ctx context.Context, notebookID, sourceID string) error {
	if err := p.store.DeleteSource(ctx, notebookID, sourceID); err != nil {
		return fmt.Errorf("failed to delete shard: %w", err)
	}
	if err := p.sourceRepo.Delete(ctx, sourceID); err != nil {
		return fmt.Errorf("failed to delete source record: %w", err)
	}
	return nil
}

// DeleteNotebook removes a notebook's shards and metadata.
func (p *Pipeline) DeleteNotebook(ctx context.Context, notebookID string) error {
	if err := p.store.DeleteNotebook(ctx, notebookID); err != nil {
		return fmt.Errorf("failed to delete notebook shards: %w", err)
	}
	if err := p.notebookRepo.Delete(ctx, notebookID); err != nil {
		return fmt.Errorf("failed to delete notebook record: %w", err)
	}
	return nil
}

func joinPages(pages []Page) string {
	var b []byte
	for i, page := range pages {
		if i > 0 {
			b = append(b, '\n', '\n')
		}
		b = append(b, page.Text...)
	}
	return string(b)
}
