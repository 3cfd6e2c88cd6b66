package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"notebook-ai/internal/contextutil"
)

// shard is the persisted record set for one (notebook, source) pair. The
// on-disk JSON layout is the durable contract of the store and must stay
// stable across versions.
type shard struct {
	Model     string   `json:"model"`
	Dimension int      `json:"dimension"`
	Records   []Record `json:"records"`
}

// FileStore implements VectorStore on the local filesystem, one JSON shard
// file per source under a per-notebook directory. Search is intentionally
// brute force: corpora are single-user scale, not an ANN workload.
type FileStore struct {
	root string

	// locksMu guards locks; each shard gets its own mutex so concurrent
	// writers to the same source are serialized while writes to other shards
	// proceed in parallel.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewFileStore creates a file-backed vector store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector store root: %w", err)
	}
	return &FileStore{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// shardLock returns the write lock for one (notebook, source) pair.
func (s *FileStore) shardLock(notebookID, sourceID string) *sync.Mutex {
	key := notebookID + "/" + sourceID
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// validateID rejects IDs that could escape the store root when used as path
// components.
func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid identifier %q", id)
	}
	return nil
}

func (s *FileStore) notebookDir(notebookID string) string {
	return filepath.Join(s.root, notebookID)
}

func (s *FileStore) shardPath(notebookID, sourceID string) string {
	return filepath.Join(s.root, notebookID, sourceID+".json")
}

// AddDocuments writes the shard for a source, replacing any prior shard
// wholesale. The write goes to a temporary file first and is renamed into
// place, so readers never observe a half-written shard.
func (s *FileStore) AddDocuments(ctx context.Context, notebookID, sourceID, model string, records []Record) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateID(notebookID); err != nil {
		return err
	}
	if err := validateID(sourceID); err != nil {
		return err
	}

	dimension := 0
	for _, rec := range records {
		if len(rec.Vector) == 0 {
			return fmt.Errorf("record %s has no vector", rec.ID)
		}
		if dimension == 0 {
			dimension = len(rec.Vector)
		} else if len(rec.Vector) != dimension {
			return fmt.Errorf("record %s has dimension %d, shard has %d", rec.ID, len(rec.Vector), dimension)
		}
	}

	data, err := json.Marshal(shard{Model: model, Dimension: dimension, Records: records})
	if err != nil {
		return fmt.Errorf("failed to marshal shard: %w", err)
	}

	lock := s.shardLock(notebookID, sourceID)
	lock.Lock()
	defer lock.Unlock()

	dir := s.notebookDir(notebookID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create notebook directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, sourceID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary shard file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write shard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close shard file: %w", err)
	}

	if err := os.Rename(tmpName, s.shardPath(notebookID, sourceID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace shard: %w", err)
	}

	logger.InfoContext(ctx, "shard written",
		"notebook_id", notebookID, "source_id", sourceID, "records", len(records), "model", model)
	return nil
}

// Search ranks every record in the notebook against the query vector.
func (s *FileStore) Search(ctx context.Context, notebookID string, query []float32, limit int, sourceIDs []string) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	if err := validateID(notebookID); err != nil {
		return nil, err
	}

	results := s.scanNotebook(ctx, notebookID, query, sourceIDs)
	rankDescending(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SearchMultiple ranks records across several notebooks into one list.
func (s *FileStore) SearchMultiple(ctx context.Context, notebookIDs []string, query []float32, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	var results []SearchResult
	for _, notebookID := range notebookIDs {
		if err := validateID(notebookID); err != nil {
			return nil, err
		}
		results = append(results, s.scanNotebook(ctx, notebookID, query, nil)...)
	}

	rankDescending(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scanNotebook scores every readable shard in a notebook against the query.
// Unreadable or corrupt shards are skipped and logged; partial results beat
// total failure. Shards written by a different-dimension embedding tier are
// skipped because their scores would be meaningless.
func (s *FileStore) scanNotebook(ctx context.Context, notebookID string, query []float32, sourceIDs []string) []SearchResult {
	logger := contextutil.LoggerFromContext(ctx)

	var filter map[string]struct{}
	if len(sourceIDs) > 0 {
		filter = make(map[string]struct{}, len(sourceIDs))
		for _, id := range sourceIDs {
			filter[id] = struct{}{}
		}
	}

	entries, err := os.ReadDir(s.notebookDir(notebookID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.WarnContext(ctx, "failed to read notebook directory", "notebook_id", notebookID, "error", err)
		}
		return nil
	}

	var results []SearchResult
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		sourceID := strings.TrimSuffix(name, ".json")
		if filter != nil {
			if _, ok := filter[sourceID]; !ok {
				continue
			}
		}

		sh, err := s.readShard(notebookID, sourceID)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable shard",
				"notebook_id", notebookID, "source_id", sourceID, "error", err)
			continue
		}
		if sh.Dimension != len(query) {
			logger.WarnContext(ctx, "skipping shard with mismatched embedding dimension",
				"notebook_id", notebookID, "source_id", sourceID,
				"shard_model", sh.Model, "shard_dimension", sh.Dimension, "query_dimension", len(query))
			continue
		}

		for _, rec := range sh.Records {
			results = append(results, SearchResult{
				ID:         rec.ID,
				NotebookID: notebookID,
				SourceID:   rec.SourceID,
				Text:       rec.Text,
				Score:      CosineSimilarity(query, rec.Vector),
				ChunkIndex: rec.ChunkIndex,
				PageNumber: rec.PageNumber,
			})
		}
	}
	return results
}

func (s *FileStore) readShard(notebookID, sourceID string) (*shard, error) {
	data, err := os.ReadFile(s.shardPath(notebookID, sourceID))
	if err != nil {
		return nil, err
	}
	var sh shard
	if err := json.Unmarshal(data, &sh); err != nil {
		return nil, fmt.Errorf("corrupt shard: %w", err)
	}
	return &sh, nil
}

// DeleteSource removes the shard for a source. Already-absent shards are a no-op.
func (s *FileStore) DeleteSource(ctx context.Context, notebookID, sourceID string) error {
	if err := validateID(notebookID); err != nil {
		return err
	}
	if err := validateID(sourceID); err != nil {
		return err
	}

	lock := s.shardLock(notebookID, sourceID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.shardPath(notebookID, sourceID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete shard: %w", err)
	}
	return nil
}

// DeleteNotebook removes every shard under a notebook. Already-absent
// notebooks are a no-op.
func (s *FileStore) DeleteNotebook(ctx context.Context, notebookID string) error {
	if err := validateID(notebookID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.notebookDir(notebookID)); err != nil {
		return fmt.Errorf("failed to delete notebook: %w", err)
	}
	return nil
}

// rankDescending sorts results by score, highest first, with the record ID as
// a tie-breaker so ordering is deterministic.
func rankDescending(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// CosineSimilarity computes dot(a,b) / (|a|·|b|). It returns 0 when either
// norm is zero so empty vectors never produce NaN scores.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
