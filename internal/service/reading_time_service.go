package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ReadingWindowSize 是每篇文章保留的最近阅读样本数。
	ReadingWindowSize = 1000
	// DefaultMinReadingTime 以下的停留视为跳出，不计入样本。
	DefaultMinReadingTime = 30 * time.Second
)

// ReadingSample 是有序集合中的一个成员，分数为 Timestamp。
// ID 保证同一毫秒内相同时长的两次阅读不会被合并成一个成员。
type ReadingSample struct {
	Timestamp   int64   `json:"timestamp"`
	ReadingTime float64 `json:"readingTime"`
	ID          string  `json:"id"`
}

// ReadingStats 汇总文章的阅读时长统计。
type ReadingStats struct {
	AverageReadingTime int64 `json:"averageReadingTime"`
	TotalReads         int64 `json:"totalReads"`
}

// ReadingTimeService 维护每篇文章最近 1000 次有效阅读的滚动平均时长。
type ReadingTimeService struct {
	store      kvstore.Store
	log        *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	minReading time.Duration
	window     int64
}

// NewReadingTimeService 创建 ReadingTimeService，默认阈值 30 秒、窗口 1000。
func NewReadingTimeService(store kvstore.Store, log *zap.Logger, m *metrics.Metrics) *ReadingTimeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadingTimeService{
		store:      store,
		log:        log,
		metrics:    m,
		now:        time.Now,
		minReading: DefaultMinReadingTime,
		window:     ReadingWindowSize,
	}
}

// WithMinReadingTime 调整跳出阈值，非正数时保持原值。
func (s *ReadingTimeService) WithMinReadingTime(d time.Duration) *ReadingTimeService {
	if d <= 0 {
		return s
	}
	s.minReading = d
	return s
}

// WithClock 允许在测试中替换时钟。
func (s *ReadingTimeService) WithClock(now func() time.Time) *ReadingTimeService {
	if now == nil {
		return s
	}
	s.now = now
	return s
}

// MinReadingTime 返回当前生效的阈值。
func (s *ReadingTimeService) MinReadingTime() time.Duration {
	return s.minReading
}

// RecordReadingTime 记录一次阅读时长（秒）。
//
// 低于阈值的阅读被静默忽略并返回 false。否则依次写入样本、裁剪到最近 1000 条、
// 读回整个窗口并重新计算平均值覆盖写入。这几步不是原子的，
// 同一文章的并发写入下最后一次计算的平均值生效。存储故障只记日志，不返回错误。
func (s *ReadingTimeService) RecordReadingTime(ctx context.Context, slug string, seconds float64) (bool, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return false, err
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return false, ErrInvalidReadingTime
	}
	if seconds < s.minReading.Seconds() {
		s.count("ignored")
		return false, nil
	}

	now := s.now()
	sample := ReadingSample{Timestamp: now.UnixMilli(), ReadingTime: seconds, ID: uuid.NewString()}
	member, err := json.Marshal(sample)
	if err != nil {
		return false, err
	}

	key := readingSamplesKey(slug)
	if err := s.store.ZAdd(ctx, key, float64(sample.Timestamp), string(member)); err != nil {
		s.count("failed")
		s.log.Debug("failed to add reading sample", zap.String("slug", slug), zap.Error(err))
		return false, nil
	}
	s.count("recorded")

	if _, err := s.store.ZRemRangeByRank(ctx, key, 0, -(s.window + 1)); err != nil {
		s.log.Debug("failed to trim reading samples", zap.String("slug", slug), zap.Error(err))
		return true, nil
	}

	members, err := s.store.ZRange(ctx, key, 0, -1)
	if err != nil {
		s.log.Debug("failed to read reading samples", zap.String("slug", slug), zap.Error(err))
		return true, nil
	}

	average, ok := s.averageOf(slug, members)
	if !ok {
		return true, nil
	}
	if err := s.store.Set(ctx, readingAverageKey(slug), strconv.FormatInt(average, 10)); err != nil {
		s.log.Debug("failed to store average reading time", zap.String("slug", slug), zap.Error(err))
	}
	return true, nil
}

// AverageReadingTime 返回已保存的平均阅读时长（秒），没有数据时为 0。
func (s *ReadingTimeService) AverageReadingTime(ctx context.Context, slug string) (int64, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return 0, err
	}
	return readInt(ctx, s.store, s.log, readingAverageKey(slug)), nil
}

// Stats 返回平均阅读时长与窗口内的样本数。
func (s *ReadingTimeService) Stats(ctx context.Context, slug string) (ReadingStats, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return ReadingStats{}, err
	}

	stats := ReadingStats{AverageReadingTime: readInt(ctx, s.store, s.log, readingAverageKey(slug))}
	total, err := s.store.ZCard(ctx, readingSamplesKey(slug))
	if err != nil {
		s.log.Debug("failed to count reading samples", zap.String("slug", slug), zap.Error(err))
		total = 0
	}
	stats.TotalReads = total
	return stats, nil
}

// averageOf 计算窗口内样本时长的四舍五入均值，无法解析的成员会被跳过。
func (s *ReadingTimeService) averageOf(slug string, members []string) (int64, bool) {
	var (
		sum   float64
		count int
	)
	for _, member := range members {
		var sample ReadingSample
		if err := json.Unmarshal([]byte(member), &sample); err != nil {
			s.log.Debug("skipping malformed reading sample", zap.String("slug", slug), zap.Error(err))
			continue
		}
		sum += sample.ReadingTime
		count++
	}
	if count == 0 {
		return 0, false
	}
	return int64(math.Round(sum / float64(count))), true
}

func (s *ReadingTimeService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.ReadingSamplesTotal.WithLabelValues(outcome).Inc()
	}
}
