package pipeline

import (
	"context"
	"log/slog"

	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/index"
)

const (
	// DefaultTopK is the default candidate count for retrieval.
	DefaultTopK = 50

	// DefaultRelevanceFloor is the default minimum similarity score for a
	// candidate to be considered.
	DefaultRelevanceFloor = 0.1
)

// Retriever runs a similarity query against the synchronized index.
// Synchronization always happens first, so staleness is bounded by the
// time since the previous query.
type Retriever struct {
	index  *index.Index
	syncer *index.Syncer
	topK   int
	floor  float32
	logger *slog.Logger
}

func newRetriever(idx *index.Index, syncer *index.Syncer, topK int, floor float32) *Retriever {
	return &Retriever{
		index:  idx,
		syncer: syncer,
		topK:   topK,
		floor:  floor,
		logger: slog.Default().With("component", "retriever"),
	}
}

// Sync reconciles the index without searching.
func (r *Retriever) Sync(ctx context.Context) (index.SyncStats, error) {
	return r.syncer.Sync(ctx)
}

// Retrieve returns candidates whose similarity clears the relevance floor,
// most relevant first, at most topK. An empty result is valid: it simply
// means nothing in the directory resembles the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*core.Match, error) {
	matches, err := r.index.Search(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}

	// The index contract is "topK nearest"; the floor belongs to retrieval.
	kept := matches[:0]
	for _, match := range matches {
		if match.Score >= r.floor {
			kept = append(kept, match)
		}
	}

	r.logger.Debug("retrieved candidates",
		"hits", len(matches), "above_floor", len(kept), "floor", r.floor)
	return kept, nil
}
