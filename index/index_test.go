package index

import (
	"context"
	"math"
	"testing"

	aimock "github.com/poiesic/hobbyfind/ai/mock"
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) (*Index, *aimock.MockEmbedder) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	embedder := aimock.NewMockEmbedder()
	idx, err := New(repo, embedder)
	require.NoError(t, err)
	return idx, embedder
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, aimock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()
	_, err = New(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestIndexAddAndSearch(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	docs := []core.Document{
		{ID: 1, Text: "user_id: 1\nabout: I love hiking in the mountains\n"},
		{ID: 2, Text: "user_id: 2\nabout: chess tournaments every weekend\n"},
	}
	require.NoError(t, idx.Add(ctx, docs))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The mock embedder is deterministic: the same text embeds to the
	// same vector, so searching with an indexed text must rank its own
	// document first with similarity ~1.
	matches, err := idx.Search(ctx, docs[0].Text, 2)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, core.ID(1), matches[0].Document.ID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-4)
}

func TestIndexAddEmptyIsNoOp(t *testing.T) {
	idx, embedder := newTestIndex(t)
	require.NoError(t, idx.Add(context.Background(), nil))
	assert.Equal(t, 0, embedder.CallCount())
}

func TestIndexAddRejectsInvalidDocument(t *testing.T) {
	idx, _ := newTestIndex(t)
	err := idx.Add(context.Background(), []core.Document{{ID: 0, Text: "no id"}})
	require.Error(t, err)
}

func TestIndexDelete(t *testing.T) {
	idx, _ := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []core.Document{
		{ID: 1, Text: "a"},
		{ID: 2, Text: "b"},
	}))
	require.NoError(t, idx.Delete(ctx, []core.ID{1, 77}))

	ids, err := idx.IDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	_, ok := ids[2]
	assert.True(t, ok)
}

func TestNormalizeVector(t *testing.T) {
	v := normalizeVector([]float32{3, 4})
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)

	zero := normalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)
}
