package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/hobbyfind/ai"
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/storage"
)

// Index is the derived similarity index over compact user documents.
// It owns embedding of added documents and delegates persistence to an
// EntryRepository. All vectors are normalized to unit length so stored
// dot products are cosine similarities.
type Index struct {
	repo     storage.EntryRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// New creates an Index over the given repository and embedder.
func New(repo storage.EntryRepository, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	idx := &Index{
		repo:     repo,
		embedder: embedder,
		logger:   slog.Default().With("component", "index"),
	}
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add embeds the given documents and inserts them.
// Calling with no documents is a no-op.
func (idx *Index) Add(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
		texts[i] = doc.Text
	}

	vectors, err := idx.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		idx.logger.Error("error embedding documents", "count", len(docs), "err", err)
		return err
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(vectors))
	}

	entries := make([]*core.IndexEntry, len(docs))
	for i, doc := range docs {
		entries[i] = &core.IndexEntry{
			ID:     doc.ID,
			Text:   doc.Text,
			Vector: normalizeVector(vectors[i]),
		}
	}

	return idx.repo.PutEntries(ctx, entries...)
}

// Delete removes entries by id. Ids not present are ignored.
func (idx *Index) Delete(ctx context.Context, ids []core.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return idx.repo.DeleteEntries(ctx, ids...)
}

// Search embeds the query and returns up to k entries ranked by descending
// cosine similarity. No relevance floor is applied here; callers filter.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]*core.Match, error) {
	vector, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		idx.logger.Error("error embedding query", "err", err)
		return nil, err
	}
	return idx.repo.FindSimilar(ctx, normalizeVector(vector), k)
}

// IDs returns the id set currently in the index.
func (idx *Index) IDs(ctx context.Context) (map[core.ID]struct{}, error) {
	return idx.repo.ListIDs(ctx)
}

// Count returns the number of indexed entries.
func (idx *Index) Count(ctx context.Context) (int, error) {
	return idx.repo.Count(ctx)
}

// Commit flushes pending writes to durable storage.
func (idx *Index) Commit(ctx context.Context) error {
	return idx.repo.Commit(ctx)
}
