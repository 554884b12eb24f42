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
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/directory"
)

// Grounder verifies every extracted identifier against the authoritative
// directory and replaces it with the full user record. An id the directory
// does not confirm never reaches a caller, no matter how confident the
// model was about it.
type Grounder struct {
	dir    directory.Directory
	pool   *ants.Pool
	logger *slog.Logger
}

func newGrounder(dir directory.Directory, poolSize int) (*Grounder, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Grounder{
		dir:    dir,
		pool:   pool,
		logger: slog.Default().With("component", "grounder"),
	}, nil
}

// Ground looks up each extracted id independently and concurrently; the
// lookups are read-only so their completion order does not matter. Ids that
// fail lookup (unknown, malformed, transient error) are dropped rather than
// failing the category or the query: one hallucinated id must not suppress
// otherwise-valid results. Categories left with no verified user are
// omitted from the result entirely, not returned as empty lists.
func (g *Grounder) Ground(ctx context.Context, extraction core.Extraction, monitor QueryMonitor) core.Grouped {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	type slot struct {
		user *core.User
	}

	var wg sync.WaitGroup
	resolved := make(map[string][]*slot, len(extraction.Matches))

	for category, ids := range extraction.Matches {
		ids := dedupe(ids)
		slots := make([]*slot, len(ids))
		for i := range slots {
			slots[i] = &slot{}
		}
		resolved[category] = slots

		for i, id := range ids {
			id, category, target := id, category, slots[i]
			wg.Add(1)
			task := func() {
				defer wg.Done()
				user, err := g.dir.GetByID(ctx, id)
				if err != nil {
					g.logger.Warn("dropping unverified identifier",
						"category", category, "id", id, "err", err)
					monitor.Dropped(category, id)
					return
				}
				target.user = user
			}
			if err := g.pool.Submit(task); err != nil {
				// Pool exhausted or released; run inline rather than
				// losing the lookup.
				task()
			}
		}
	}
	wg.Wait()

	// Reassemble in extraction order, compacting dropped slots.
	grouped := make(core.Grouped, len(resolved))
	for category, slots := range resolved {
		users := make([]*core.User, 0, len(slots))
		for _, s := range slots {
			if s.user != nil {
				users = append(users, s.user)
			}
		}
		if len(users) > 0 {
			grouped[category] = users
		}
	}
	return grouped
}

// Release releases the grounding worker pool.
func (g *Grounder) Release() {
	g.pool.Release()
}

// dedupe removes repeated ids, keeping first-occurrence order.
// Models happily repeat an id inside one category; looking it up once is
// enough.
func dedupe(ids []core.ID) []core.ID {
	seen := make(map[core.ID]struct{}, len(ids))
	out := make([]core.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
