package service

import (
	"context"
	"time"

	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/metrics"
	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// ViewService 负责文章浏览量的累加与读取。
type ViewService struct {
	store   kvstore.Store
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewViewService 创建 ViewService，m 可以为空。
func NewViewService(store kvstore.Store, log *zap.Logger, m *metrics.Metrics) *ViewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ViewService{store: store, log: log, metrics: m, now: time.Now}
}

// WithClock 允许在测试中替换时钟。
func (s *ViewService) WithClock(now func() time.Time) *ViewService {
	if now == nil {
		return s
	}
	s.now = now
	return s
}

// RecordView 累加总浏览量与当日浏览量，返回累加后的总浏览量。
//
// 两次自增不在同一事务中，中途失败可能让当日计数落后于总数。
// 存储故障不会返回错误，此时返回 0。
func (s *ViewService) RecordView(ctx context.Context, slug string) (int64, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return 0, err
	}

	total, err := s.store.Incr(ctx, viewsKey(slug))
	if err != nil {
		s.log.Debug("failed to record view", zap.String("slug", slug), zap.Error(err))
		total = 0
	} else if s.metrics != nil {
		s.metrics.ViewsRecordedTotal.Inc()
	}

	day := s.now().Format(dayLayout)
	if _, err := s.store.Incr(ctx, dailyViewsKey(slug, day)); err != nil {
		s.log.Debug("failed to record daily view", zap.String("slug", slug), zap.String("day", day), zap.Error(err))
	}

	return total, nil
}

// ViewCount 返回总浏览量，未记录过时为 0。
func (s *ViewService) ViewCount(ctx context.Context, slug string) (int64, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return 0, err
	}
	return readInt(ctx, s.store, s.log, viewsKey(slug)), nil
}

// TodayViews 返回服务器本地日期当天的浏览量。
func (s *ViewService) TodayViews(ctx context.Context, slug string) (int64, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return 0, err
	}
	return readInt(ctx, s.store, s.log, dailyViewsKey(slug, s.now().Format(dayLayout))), nil
}
