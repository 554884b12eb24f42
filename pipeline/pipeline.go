// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/poiesic/hobbyfind/ai"
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/directory"
	"github.com/poiesic/hobbyfind/index"
)

// Pipeline answers hobby questions about a volatile user directory.
// Every query walks the same four stages in order: synchronize the index
// with the directory, retrieve candidate snippets, extract a
// category-to-ids mapping from the model, and ground every id back against
// the directory before anything is returned.
type Pipeline struct {
	idx       *index.Index
	dir       directory.Directory
	retriever *Retriever
	extractor *Extractor
	grounder  *Grounder
	monitor   QueryMonitor
	ready     atomic.Bool
	logger    *slog.Logger

	topK      int
	floor     float32
	batchSize int
	poolSize  int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTopK sets how many candidates retrieval asks the index for.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithRelevanceFloor sets the minimum similarity score a candidate needs
// to reach the extraction stage.
func WithRelevanceFloor(floor float32) Option {
	return func(p *Pipeline) {
		p.floor = floor
	}
}

// WithMonitor attaches a query monitor that observes each stage.
func WithMonitor(monitor QueryMonitor) Option {
	return func(p *Pipeline) {
		if monitor != nil {
			p.monitor = monitor
		}
	}
}

// WithBootstrapBatchSize sets the embedding batch size used during cold
// start.
func WithBootstrapBatchSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.batchSize = size
		}
	}
}

// WithPoolSize sets the worker pool size shared by cold start and
// grounding.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.poolSize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New assembles a pipeline over an already-constructed index, an
// authoritative directory, and an AI provider. Call Bootstrap before the
// first Query.
func New(idx *index.Index, dir directory.Directory, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if dir == nil {
		return nil, ErrDirectoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	p := &Pipeline{
		idx:       idx,
		dir:       dir,
		monitor:   &noopMonitor{},
		logger:    slog.Default().With("component", "pipeline"),
		topK:      DefaultTopK,
		floor:     DefaultRelevanceFloor,
		batchSize: 0,
		poolSize:  poolSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	syncer, err := index.NewSyncer(idx, dir)
	if err != nil {
		return nil, err
	}
	p.retriever = newRetriever(idx, syncer, p.topK, p.floor)
	p.extractor = newExtractor(provider.Completer())

	grounder, err := newGrounder(dir, p.poolSize)
	if err != nil {
		return nil, err
	}
	p.grounder = grounder

	return p, nil
}

// Bootstrap prepares the pipeline for queries. An empty index triggers a
// cold-start build from a full directory snapshot; a non-empty one is
// reused as is, since the per-query sync will reconcile whatever changed
// while the pipeline was down.
func (p *Pipeline) Bootstrap(ctx context.Context) error {
	count, err := p.idx.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		p.logger.Info("reusing existing index", "entries", count)
		p.ready.Store(true)
		return nil
	}

	users, err := p.dir.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	builderOpts := []index.BuilderOption{index.WithPoolSize(p.poolSize)}
	if p.batchSize > 0 {
		builderOpts = append(builderOpts, index.WithBatchSize(p.batchSize))
	}
	builder, err := index.NewBuilder(p.idx, builderOpts...)
	if err != nil {
		return err
	}
	if err := builder.Build(ctx, users); err != nil {
		return err
	}

	p.ready.Store(true)
	return nil
}

// Ready reports whether Bootstrap has completed.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Query answers a free-form hobby question with users grouped by the
// categories the model found. Every returned user was confirmed to exist
// in the directory during this very call. An empty result with a nil error
// means the question genuinely matched nobody.
func (p *Pipeline) Query(ctx context.Context, query string) (core.Grouped, error) {
	if !p.ready.Load() {
		return nil, failedAt(StageSync, fmt.Errorf("%w: pipeline not bootstrapped", ErrIndexUnavailable))
	}

	p.monitor.Start(query)

	stats, err := p.retriever.Sync(ctx)
	if err != nil {
		return nil, failedAt(StageSync, fmt.Errorf("%w: %v", ErrSourceUnavailable, err))
	}
	p.monitor.AfterSync(stats)

	matches, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, failedAt(StageRetrieve, err)
	}
	p.monitor.AfterRetrieve(matches)

	docs := make([]core.Document, 0, len(matches))
	for _, match := range matches {
		docs = append(docs, match.Document)
	}

	extraction := p.extractor.Extract(ctx, query, docs)
	p.monitor.AfterExtract(extraction)

	if extraction.IsEmpty() {
		grouped := core.Grouped{}
		p.monitor.Finish(grouped)
		return grouped, nil
	}

	grouped := p.grounder.Ground(ctx, extraction, p.monitor)
	p.monitor.AfterGround(grouped)

	p.monitor.Finish(grouped)
	return grouped, nil
}

// Release frees the pipeline's worker pools. The index and directory are
// owned by the caller and are left open.
func (p *Pipeline) Release() {
	p.grounder.Release()
}
