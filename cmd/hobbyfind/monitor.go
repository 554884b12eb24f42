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


package main

import (
	"fmt"
	"os"
	"time"

	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/index"
)

// progressMonitor narrates each query stage on stderr so the answer JSON
// on stdout stays clean for piping.
type progressMonitor struct {
	started time.Time
}

func (m *progressMonitor) Start(query string) {
	m.started = time.Now()
	fmt.Fprintf(os.Stderr, "question: %s\n", query)
}

func (m *progressMonitor) AfterSync(stats index.SyncStats) {
	fmt.Fprintf(os.Stderr, "sync: %d added, %d deleted, %d indexed\n",
		stats.Added, stats.Deleted, stats.Total)
}

func (m *progressMonitor) AfterRetrieve(matches []*core.Match) {
	fmt.Fprintf(os.Stderr, "retrieved %d candidate snippets\n", len(matches))
}

func (m *progressMonitor) AfterExtract(extraction core.Extraction) {
	fmt.Fprintf(os.Stderr, "extraction: %s, %d categories\n",
		extraction.Status, len(extraction.Matches))
}

func (m *progressMonitor) Dropped(category string, id core.ID) {
	fmt.Fprintf(os.Stderr, "dropped unverified id %d in %q\n", id, category)
}

func (m *progressMonitor) AfterGround(grouped core.Grouped) {
	fmt.Fprintf(os.Stderr, "grounded %d categories\n", len(grouped))
}

func (m *progressMonitor) Finish(grouped core.Grouped) {
	total := 0
	for _, users := range grouped {
		total += len(users)
	}
	fmt.Fprintf(os.Stderr, "answered with %d users in %s\n",
		total, time.Since(m.started).Round(time.Millisecond))
}
