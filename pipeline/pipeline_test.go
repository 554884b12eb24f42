package pipeline

import (
	"context"
	"errors"
	"testing"

	aimock "github.com/poiesic/hobbyfind/ai/mock"
	"github.com/poiesic/hobbyfind/core"
	dirmock "github.com/poiesic/hobbyfind/directory/mock"
	"github.com/poiesic/hobbyfind/index"
	"github.com/poiesic/hobbyfind/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	pipe      *Pipeline
	dir       *dirmock.MockDirectory
	embedder  *aimock.MockEmbedder
	completer *aimock.MockCompleter
	idx       *index.Index
}

func newTestPipeline(t *testing.T, opts ...Option) *testFixture {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	embedder := aimock.NewMockEmbedder()
	completer := aimock.NewMockCompleter()
	provider := aimock.NewMockProviderWithServices(embedder, completer)

	idx, err := index.New(repo, embedder)
	require.NoError(t, err)

	dir := dirmock.NewMockDirectory()

	// The mock embedder's vectors are content hashes, not semantic, so
	// disable the floor: retrieval order is irrelevant to these tests,
	// reaching the extractor with all candidates is what matters.
	opts = append([]Option{WithRelevanceFloor(-2)}, opts...)
	pipe, err := New(idx, dir, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipe.Release)

	return &testFixture{pipe: pipe, dir: dir, embedder: embedder, completer: completer, idx: idx}
}

func TestPipelineQueryGroupsVerifiedUsers(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "I love hiking and mountain trails")
	f.dir.Seed(2, "chess player")
	f.dir.Seed(3, "hiking and camping")
	f.completer.Response = `{"matches": {"hiking": [1, 3]}}`

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))
	require.True(t, f.pipe.Ready())

	grouped, err := f.pipe.Query(ctx, "who likes the outdoors?")
	require.NoError(t, err)
	require.Len(t, grouped, 1)
	require.Len(t, grouped["hiking"], 2)
	assert.Equal(t, core.ID(1), grouped["hiking"][0].ID)
	assert.Equal(t, core.ID(3), grouped["hiking"][1].ID)
}

func TestPipelineQueryDropsHallucinatedID(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(2, "chess player")
	f.completer.Response = `{"matches": {"chess": [2, 99]}}`

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	grouped, err := f.pipe.Query(ctx, "who plays chess?")
	require.NoError(t, err)
	require.Len(t, grouped["chess"], 1)
	assert.Equal(t, core.ID(2), grouped["chess"][0].ID)
}

func TestPipelineQueryEmptyExtraction(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "gardening")
	f.completer.Response = `{"matches": {}}`

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	grouped, err := f.pipe.Query(ctx, "who flies helicopters?")
	require.NoError(t, err)
	assert.Empty(t, grouped, "no matches is a valid empty answer, not an error")
}

func TestPipelineSyncsBeforeEachQuery(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "hiking")
	f.dir.Seed(2, "chess")
	f.completer.Response = `{"matches": {"chess": [2]}}`

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	grouped, err := f.pipe.Query(ctx, "who plays chess?")
	require.NoError(t, err)
	require.Len(t, grouped["chess"], 1)

	// User 2 leaves the directory between queries. The next query must
	// sync the deletion out of the index and ground the stale id away.
	f.dir.Remove(2)

	grouped, err = f.pipe.Query(ctx, "who plays chess?")
	require.NoError(t, err)
	assert.Empty(t, grouped, "a departed user must not be returned")

	ids, err := f.idx.IDs(ctx)
	require.NoError(t, err)
	_, ok := ids[2]
	assert.False(t, ok, "departed user purged from the index")
}

func TestPipelineQueryFailsWhenDirectoryDown(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "hiking")

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	f.dir.ListAllFunc = func(ctx context.Context) ([]*core.User, error) {
		return nil, errors.New("directory down")
	}

	_, err := f.pipe.Query(ctx, "who hikes?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, StageSync, qerr.Stage)
}

func TestPipelineQueryRetrievalFailure(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "hiking")

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	// Query embedding goes through EmbedText; bootstrap and sync use
	// EmbedTexts, so only the retrieval stage is affected.
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedder down")
	}

	_, err := f.pipe.Query(ctx, "who hikes?")
	require.Error(t, err)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, StageRetrieve, qerr.Stage)
	assert.NotErrorIs(t, err, ErrIndexUnavailable,
		"a transient retrieval failure must not look like a missing cold start")
}

func TestPipelineQueryCanceledContext(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "I love hiking")
	f.completer.Response = `{"matches": {"hiking": [1]}}`

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	f.dir.ListAllFunc = func(ctx context.Context) ([]*core.User, error) {
		return nil, ctx.Err()
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err := f.pipe.Query(canceled, "who hikes?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, StageSync, qerr.Stage)

	// The abandoned sync must not have mutated the index.
	count, err := f.idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A live context on the next query proceeds normally.
	f.dir.ListAllFunc = nil
	grouped, err := f.pipe.Query(ctx, "who hikes?")
	require.NoError(t, err)
	require.Len(t, grouped["hiking"], 1)
}

func TestPipelineQueryBeforeBootstrap(t *testing.T) {
	f := newTestPipeline(t)
	_, err := f.pipe.Query(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestPipelineBootstrapColdStart(t *testing.T) {
	f := newTestPipeline(t)
	for i := 1; i <= 25; i++ {
		f.dir.Seed(core.ID(i), "some hobby")
	}

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))

	count, err := f.idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, count)
}

func TestPipelineBootstrapReusesExistingIndex(t *testing.T) {
	f := newTestPipeline(t)
	f.dir.Seed(1, "hiking")

	ctx := context.Background()
	require.NoError(t, f.pipe.Bootstrap(ctx))
	listCalls := f.dir.ListCalls()

	// A second bootstrap over a populated index skips the rebuild.
	require.NoError(t, f.pipe.Bootstrap(ctx))
	assert.Equal(t, listCalls, f.dir.ListCalls())
}

func TestPipelineValidation(t *testing.T) {
	provider := aimock.NewMockProvider()
	dir := dirmock.NewMockDirectory()

	_, err := New(nil, dir, provider)
	assert.ErrorIs(t, err, ErrIndexRequired)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()
	idx, err := index.New(repo, aimock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = New(idx, nil, provider)
	assert.ErrorIs(t, err, ErrDirectoryRequired)

	_, err = New(idx, dir, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}
