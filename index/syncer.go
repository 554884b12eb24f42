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
	"log/slog"
	"sync"

	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/directory"
)

// SyncStats summarizes one synchronization pass.
type SyncStats struct {
	Deleted int // entries removed because their id left the directory
	Added   int // entries embedded and inserted for new ids
	Total   int // directory snapshot size at fetch time
}

// Syncer reconciles the index against the authoritative directory without
// a full rebuild: stale ids are deleted, new ids are compacted, embedded,
// and added. Unchanged records are never re-embedded.
//
// The whole reconcile-and-mutate phase runs under an internal mutex so two
// concurrent queries cannot interleave their sync passes and lose updates
// (one pass's delete overwritten by another's stale add).
type Syncer struct {
	index  *Index
	dir    directory.Directory
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSyncer creates a synchronizer for the given index and directory.
func NewSyncer(idx *Index, dir directory.Directory) (*Syncer, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if dir == nil {
		return nil, ErrDirectoryRequired
	}
	return &Syncer{
		index:  idx,
		dir:    dir,
		logger: slog.Default().With("component", "index-syncer"),
	}, nil
}

// Sync runs one reconciliation pass and reports what changed.
//
// If the snapshot fetch fails, the index is not touched and the pass fails.
// If a delete or add sub-step fails partway, the index may be left partially
// synchronized; that is acceptable because the next pass recomputes the diff
// from scratch and heals it (idempotent reconciliation).
func (s *Syncer) Sync(ctx context.Context) (SyncStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats SyncStats

	// Fetch the snapshot before any mutation so a directory outage leaves
	// the index in its last fully-synchronized state.
	users, err := s.dir.ListAll(ctx)
	if err != nil {
		s.logger.Error("snapshot fetch failed, index untouched", "err", err)
		return stats, err
	}
	stats.Total = len(users)

	current := make(map[core.ID]*core.User, len(users))
	for _, user := range users {
		current[user.ID] = user
	}

	indexed, err := s.index.IDs(ctx)
	if err != nil {
		return stats, err
	}

	var toDelete []core.ID
	for id := range indexed {
		if _, ok := current[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}

	var toAdd []core.Document
	for id, user := range current {
		if _, ok := indexed[id]; !ok {
			toAdd = append(toAdd, core.CompactUser(user))
		}
	}

	if len(toDelete) == 0 && len(toAdd) == 0 {
		s.logger.Debug("index already in sync", "entries", len(indexed))
		return stats, nil
	}

	if err := s.index.Delete(ctx, toDelete); err != nil {
		return stats, err
	}
	stats.Deleted = len(toDelete)

	if err := s.index.Add(ctx, toAdd); err != nil {
		return stats, err
	}
	stats.Added = len(toAdd)

	if err := s.index.Commit(ctx); err != nil {
		return stats, err
	}

	s.logger.Info("index synchronized",
		"deleted", stats.Deleted,
		"added", stats.Added,
		"total", stats.Total)
	return stats, nil
}
