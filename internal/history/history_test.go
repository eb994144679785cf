package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/wa-messenger/internal/model"
	"github.com/nimasrn/wa-messenger/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxRuns int64) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb, err := redis.NewRedisAdapter(t.Name(), "wa:", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour, maxRuns), mr
}

func testRun(id string) *model.BulkRun {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.BulkRun{
		ID:        id,
		Kind:      model.BulkKindManual,
		DelayMs:   0,
		StartedAt: now,
		Results: []model.BulkSendResult{
			{Phone: "+1", Message: "hi", Status: model.SendStatusSuccess, Timestamp: now},
		},
		Summary: model.BulkSummary{Total: 1, Successful: 1},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	s, _ := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testRun("r1")))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, 1, got.Summary.Successful)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "+1", got.Results[0].Phone)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_RecentIsNewestFirstAndCapped(t *testing.T) {
	s, _ := newTestStore(t, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Save(ctx, testRun(fmt.Sprintf("r%d", i))))
	}

	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "r5", runs[0].ID)
	assert.Equal(t, "r3", runs[2].ID)

	runs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r5", runs[0].ID)
}

func TestStore_RecentSkipsExpired(t *testing.T) {
	s, mr := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testRun("old")))
	mr.FastForward(2 * time.Hour)
	require.NoError(t, s.Save(ctx, testRun("new")))

	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].ID)
}

func TestStore_RecentPrunesExpiredIDs(t *testing.T) {
	s, mr := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testRun("old")))
	mr.FastForward(2 * time.Hour)

	_, err := s.Recent(ctx, 0)
	require.NoError(t, err)

	ids, err := mr.List("wa:" + runsListKey)
	if err != nil {
		// miniredis drops a list once its last element is removed
		assert.ErrorIs(t, err, miniredis.ErrKeyNotFound)
		return
	}
	assert.Empty(t, ids)
}

func TestStore_Ping(t *testing.T) {
	s, mr := newTestStore(t, 10)
	assert.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
