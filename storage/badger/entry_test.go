package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/storage"
)

func TestEntryRepositoryPutGet(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	entry := &core.IndexEntry{
		ID:     1,
		Text:   "user_id: 1\nabout: I love hiking\n",
		Vector: []float32{1, 0, 0},
	}
	if err := repo.PutEntries(ctx, entry); err != nil {
		t.Fatalf("Failed to put entry: %v", err)
	}

	got, err := repo.GetEntry(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got.Text != entry.Text {
		t.Fatalf("Expected %q, got %q", entry.Text, got.Text)
	}

	_, err = repo.GetEntry(ctx, 99)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing entry, got %v", err)
	}
}

func TestEntryRepositoryDeleteAndList(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	entries := []*core.IndexEntry{
		{ID: 1, Text: "a", Vector: []float32{1}},
		{ID: 2, Text: "b", Vector: []float32{1}},
		{ID: 3, Text: "c", Vector: []float32{1}},
	}
	if err := repo.PutEntries(ctx, entries...); err != nil {
		t.Fatalf("Failed to put entries: %v", err)
	}

	// Deleting a mix of present and absent ids must not error.
	if err := repo.DeleteEntries(ctx, 2, 42); err != nil {
		t.Fatalf("Failed to delete entries: %v", err)
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("Failed to list ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 ids, got %d", len(ids))
	}
	if _, ok := ids[2]; ok {
		t.Fatal("Deleted id still listed")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected count 2, got %d", count)
	}
}

func TestEntryRepositoryFindSimilar(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	entries := []*core.IndexEntry{
		{ID: 1, Text: "hiking", Vector: []float32{1, 0, 0}},
		{ID: 2, Text: "chess", Vector: []float32{0, 1, 0}},
		{ID: 3, Text: "trail walks", Vector: []float32{0.9, 0.1, 0}},
	}
	if err := repo.PutEntries(ctx, entries...); err != nil {
		t.Fatalf("Failed to put entries: %v", err)
	}

	matches, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Document.ID != 1 {
		t.Fatalf("Expected best match id 1, got %d", matches[0].Document.ID)
	}
	if matches[1].Document.ID != 3 {
		t.Fatalf("Expected second match id 3, got %d", matches[1].Document.ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Matches not sorted by descending score")
	}
}

func TestEntryRepositoryRejectsInvalid(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	noVector := &core.IndexEntry{ID: 5, Text: "x"}
	if err := repo.PutEntries(ctx, noVector); err == nil {
		t.Fatal("Expected error for entry without vector")
	}
}
