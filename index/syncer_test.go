package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/hobbyfind/core"
	dirmock "github.com/poiesic/hobbyfind/directory/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncerConvergence(t *testing.T) {
	idx, _ := newTestIndex(t)
	dir := dirmock.NewMockDirectory()
	dir.Seed(1, "hiking")
	dir.Seed(2, "chess")

	syncer, err := NewSyncer(idx, dir)
	require.NoError(t, err)

	ctx := context.Background()

	stats, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 0, stats.Deleted)
	assert.Equal(t, 2, stats.Total)

	// Mutate the directory: one user leaves, one arrives.
	dir.Remove(1)
	dir.Seed(3, "painting")

	stats, err = syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Deleted)

	ids, err := idx.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[core.ID]struct{}{2: {}, 3: {}}, ids)
}

func TestSyncerIdempotent(t *testing.T) {
	idx, embedder := newTestIndex(t)
	dir := dirmock.NewMockDirectory()
	dir.Seed(1, "hiking")

	syncer, err := NewSyncer(idx, dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = syncer.Sync(ctx)
	require.NoError(t, err)

	calls := embedder.CallCount()
	stats, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Added)
	assert.Equal(t, 0, stats.Deleted)
	assert.Equal(t, calls, embedder.CallCount(), "an in-sync pass must not re-embed anything")
}

func TestSyncerSerializesConcurrentPasses(t *testing.T) {
	idx, _ := newTestIndex(t)
	dir := dirmock.NewMockDirectory()
	for i := 1; i <= 8; i++ {
		dir.Seed(core.ID(i), "some hobby")
	}

	syncer, err := NewSyncer(idx, dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = syncer.Sync(ctx)
	require.NoError(t, err)

	// Churn the directory from several goroutines, each running its own
	// sync pass. Passes must serialize so one pass's delete is never
	// clobbered by another pass's stale add.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			dir.Remove(core.ID(n + 1))
			dir.Seed(core.ID(100+n), "new arrival")
			_, err := syncer.Sync(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// One quiet pass over the now-stable directory must converge exactly.
	_, err = syncer.Sync(ctx)
	require.NoError(t, err)

	users, err := dir.ListAll(ctx)
	require.NoError(t, err)
	want := make(map[core.ID]struct{}, len(users))
	for _, user := range users {
		want[user.ID] = struct{}{}
	}

	ids, err := idx.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, ids)
}

func TestSyncerFetchFailureLeavesIndexUntouched(t *testing.T) {
	idx, _ := newTestIndex(t)
	dir := dirmock.NewMockDirectory()
	dir.Seed(1, "hiking")

	syncer, err := NewSyncer(idx, dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = syncer.Sync(ctx)
	require.NoError(t, err)

	dir.ListAllFunc = func(ctx context.Context) ([]*core.User, error) {
		return nil, errors.New("directory down")
	}

	_, err = syncer.Sync(ctx)
	require.Error(t, err)

	ids, err := idx.IDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "failed fetch must not mutate the index")
}

func TestSyncerValidation(t *testing.T) {
	idx, _ := newTestIndex(t)
	_, err := NewSyncer(nil, dirmock.NewMockDirectory())
	assert.ErrorIs(t, err, ErrIndexRequired)
	_, err = NewSyncer(idx, nil)
	assert.ErrorIs(t, err, ErrDirectoryRequired)
}
