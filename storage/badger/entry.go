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


package badger

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
//
// Returns storage.EntryRepository interface to enforce abstraction.
func NewEntryRepository(backend *Backend) (storage.EntryRepository, error) {
	return newEntryRepository(backend)
}

// newEntryRepository is the internal constructor returning the concrete type.
func newEntryRepository(backend *Backend) (*EntryRepository, error) {
	return &EntryRepository{backend: backend}, nil
}

// PutEntries inserts or replaces index entries.
func (r *EntryRepository) PutEntries(ctx context.Context, entries ...*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := core.ValidateEntry(entry); err != nil {
				return err
			}
			key := makeEntryKey(entry.ID)
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteEntries removes entries by id. Missing ids are ignored.
func (r *EntryRepository) DeleteEntries(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeEntryKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by id.
func (r *EntryRepository) GetEntry(ctx context.Context, id core.ID) (*core.IndexEntry, error) {
	var result *core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListIDs returns the set of ids currently stored.
// Ids are parsed from keys; values are never touched.
func (r *EntryRepository) ListIDs(ctx context.Context) (map[core.ID]struct{}, error) {
	ids := make(map[core.ID]struct{})
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefixLen := len(entryPrefix) + 1
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			n, err := strconv.ParseInt(string(key[prefixLen:]), 10, 64)
			if err != nil {
				continue
			}
			ids[core.ID(n)] = struct{}{}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Count returns the number of stored entries.
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FindSimilar returns up to limit entries ranked by descending similarity.
// Similarity is the dot product, which equals cosine similarity for the
// unit-length vectors the index stores.
func (r *EntryRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.Match, error) {
	var results []*core.Match

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entry *core.IndexEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			results = append(results, &core.Match{
				Document: entry.Document(),
				Score:    dotProduct(vector, entry.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Commit flushes pending writes to disk. No-op for in-memory backends.
func (r *EntryRepository) Commit(ctx context.Context) error {
	return r.backend.Sync()
}

// Close releases resources. EntryRepository has no resources of its own.
func (r *EntryRepository) Close() error {
	return nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
