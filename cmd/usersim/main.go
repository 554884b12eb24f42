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


// Command usersim runs a small user directory service with optional
// churn, for exercising the pipeline without a real backend. It speaks
// the same two endpoints HTTPDirectory consumes:
//
//	GET /users        full snapshot
//	GET /users/{id}   single record, 404 when unknown
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/hobbyfind/core"
	"github.com/urfave/cli/v2"
)

var sampleBios = []string{
	"I love hiking and mountain trails on weekends.",
	"Chess player, also enjoy reading mystery novels.",
	"Hiking and camping are my thing, plus some photography.",
	"Amateur painter, watercolors mostly.",
	"I play guitar in a garage band and collect vinyl.",
	"Marathon runner, training for my fourth race.",
	"Board games and tabletop RPGs every Friday night.",
	"Gardening keeps me sane, tomatoes are my specialty.",
	"Rock climbing indoors and out, belay certified.",
	"Cooking enthusiast, mostly Thai and Italian food.",
	"I restore old bicycles and ride them on rail trails.",
	"Birdwatching at dawn, I keep a life list.",
	"Woodworking in my garage shop, small furniture.",
	"Salsa dancing twice a week, started last year.",
	"Astronomy nerd with a backyard telescope.",
}

// simDirectory is an in-memory user set with mutation under a lock.
// Ids are never reused so a deleted user stays deleted.
type simDirectory struct {
	mu     sync.RWMutex
	users  map[core.ID]*core.User
	nextID core.ID
	rng    *rand.Rand
	logger *slog.Logger
}

func newSimDirectory(seedCount int, seed int64) *simDirectory {
	d := &simDirectory{
		users:  make(map[core.ID]*core.User),
		nextID: 1,
		rng:    rand.New(rand.NewSource(seed)),
		logger: slog.Default().With("component", "usersim"),
	}
	for i := 0; i < seedCount; i++ {
		d.addLocked()
	}
	return d
}

func (d *simDirectory) addLocked() *core.User {
	user := &core.User{
		ID: d.nextID,
		Attributes: map[string]string{
			"about": sampleBios[d.rng.Intn(len(sampleBios))],
		},
	}
	d.users[d.nextID] = user
	d.nextID++
	return user
}

// churn adds one user and removes one existing user at random, keeping
// the population roughly stable while guaranteeing both sides of the
// reconciliation diff get exercised.
func (d *simDirectory) churn() {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := d.addLocked()

	ids := make([]core.ID, 0, len(d.users))
	for id := range d.users {
		if id != added.ID {
			ids = append(ids, id)
		}
	}
	var removed core.ID
	if len(ids) > 0 {
		removed = ids[d.rng.Intn(len(ids))]
		delete(d.users, removed)
	}
	d.logger.Info("churned directory", "added", added.ID, "removed", removed, "size", len(d.users))
}

func (d *simDirectory) handleList(w http.ResponseWriter, r *http.Request) {
	d.mu.RLock()
	snapshot := make([]*core.User, 0, len(d.users))
	for _, user := range d.users {
		snapshot = append(snapshot, user)
	}
	d.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		d.logger.Error("failed to encode snapshot", "err", err)
	}
}

func (d *simDirectory) handleGet(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/users/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "malformed user id", http.StatusBadRequest)
		return
	}

	d.mu.RLock()
	user, ok := d.users[core.ID(id)]
	d.mu.RUnlock()
	if !ok {
		http.Error(w, "no such user", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(user); err != nil {
		d.logger.Error("failed to encode user", "err", err, "id", id)
	}
}

func main() {
	app := &cli.App{
		Name:  "usersim",
		Usage: "Volatile user directory service for local pipeline testing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
				Value: ":8091",
			},
			&cli.IntFlag{
				Name:  "seed-count",
				Usage: "Number of users to start with",
				Value: 50,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed for reproducible populations",
				Value: time.Now().UnixNano(),
			},
			&cli.DurationFlag{
				Name:  "churn-interval",
				Usage: "How often to add and remove a random user (0 disables churn)",
				Value: 30 * time.Second,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dir := newSimDirectory(c.Int("seed-count"), c.Int64("seed"))

	if interval := c.Duration("churn-interval"); interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				dir.churn()
			}
		}()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users", dir.handleList)
	mux.HandleFunc("/users/", dir.handleGet)

	addr := c.String("addr")
	fmt.Printf("usersim serving %d users on %s\n", c.Int("seed-count"), addr)
	return http.ListenAndServe(addr, mux)
}
