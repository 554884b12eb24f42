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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hobbyfind/core"
)

const defaultBatchSize = 100

// Builder performs cold-start construction of an Index from a full
// directory snapshot. Records are compacted, partitioned into fixed-size
// batches, embedded concurrently, and merged into the index. Merge order is
// irrelevant since the index is a set keyed by id.
type Builder struct {
	index     *Index
	batchSize int
	poolSize  int
	logger    *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBatchSize sets how many records go into one embedding batch.
// Default is 100, matching typical embedding provider request limits.
func WithBatchSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.batchSize = size
		}
	}
}

// WithPoolSize sets the worker pool size for concurrent batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.poolSize = size
		}
	}
}

// WithBuilderLogger sets a custom logger.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a cold-start builder for the given index.
func NewBuilder(idx *Index, opts ...BuilderOption) (*Builder, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	b := &Builder{
		index:     idx,
		batchSize: defaultBatchSize,
		poolSize:  poolSize,
		logger:    slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build compacts and indexes the full user snapshot.
// Batches are embedded concurrently and joined before the final commit.
// Any batch failure fails the whole build: a partially built index that
// silently omits records must not be served, the caller retries instead.
func (b *Builder) Build(ctx context.Context, users []*core.User) error {
	docs := make([]core.Document, 0, len(users))
	for _, user := range users {
		docs = append(docs, core.CompactUser(user))
	}

	batches := partition(docs, b.batchSize)
	b.logger.Info("building index", "records", len(docs), "batches", len(batches))

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, batch := range batches {
		batch := batch
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := b.index.Add(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("cold start failed: %w", firstErr)
	}

	if err := b.index.Commit(ctx); err != nil {
		return err
	}

	b.logger.Info("index built", "records", len(docs))
	return nil
}

// partition splits docs into slices of at most size elements.
func partition(docs []core.Document, size int) [][]core.Document {
	if len(docs) == 0 {
		return nil
	}
	batches := make([][]core.Document, 0, (len(docs)+size-1)/size)
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}
