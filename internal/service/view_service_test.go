package service

import (
	"context"
	"testing"
	"time"

	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestViewCountDefaultsToZero(t *testing.T) {
	svc := NewViewService(kvstore.NewMemoryStore(), zap.NewNop(), nil)

	count, err := svc.ViewCount(context.Background(), "never-viewed")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordViewIncrementsTotalAndDay(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := metrics.New()

	day := time.Date(2024, 5, 1, 23, 59, 0, 0, time.Local)
	svc := NewViewService(store, zap.NewNop(), m).WithClock(func() time.Time { return day })

	for want := int64(1); want <= 3; want++ {
		total, err := svc.RecordView(ctx, "intro")
		require.NoError(t, err)
		assert.Equal(t, want, total)
	}

	count, err := svc.ViewCount(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	today, err := svc.TodayViews(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, int64(3), today)

	raw, found, err := store.Get(ctx, "pageviews:intro:2024-05-01")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "3", raw)

	// 跨天后当日计数重新开始，总数继续累加
	svc.WithClock(func() time.Time { return day.Add(2 * time.Minute) })
	total, err := svc.RecordView(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	today, err = svc.TodayViews(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, int64(1), today)

	assert.Equal(t, float64(4), testutil.ToFloat64(m.ViewsRecordedTotal))
}

func TestRecordViewAddsN(t *testing.T) {
	ctx := context.Background()
	svc := NewViewService(kvstore.NewMemoryStore(), zap.NewNop(), nil)

	_, err := svc.RecordView(ctx, "post")
	require.NoError(t, err)
	before, err := svc.ViewCount(ctx, "post")
	require.NoError(t, err)

	const n = 17
	for i := 0; i < n; i++ {
		_, err := svc.RecordView(ctx, "post")
		require.NoError(t, err)
	}

	after, err := svc.ViewCount(ctx, "post")
	require.NoError(t, err)
	assert.Equal(t, before+n, after)
}

func TestRecordViewRejectsInvalidSlug(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	svc := NewViewService(store, zap.NewNop(), nil)

	_, err := svc.RecordView(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidSlug)

	_, err = svc.ViewCount(ctx, "a:b")
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestViewServiceFailsOpen(t *testing.T) {
	ctx := context.Background()

	for name, store := range map[string]kvstore.Store{
		"down": downStore{},
		"nop":  kvstore.NewNopStore(),
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewViewService(store, zap.NewNop(), nil)

			total, err := svc.RecordView(ctx, "intro")
			require.NoError(t, err)
			assert.Zero(t, total)

			count, err := svc.ViewCount(ctx, "intro")
			require.NoError(t, err)
			assert.Zero(t, count)

			today, err := svc.TodayViews(ctx, "intro")
			require.NoError(t, err)
			assert.Zero(t, today)
		})
	}
}

func TestViewCountIgnoresMalformedValue(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "pageviews:intro", "lots"))

	count, err := NewViewService(store, zap.NewNop(), nil).ViewCount(ctx, "intro")
	require.NoError(t, err)
	assert.Zero(t, count)
}
