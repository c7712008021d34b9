package kvstore

import (
	"context"
	"time"

	"github.com/folio/internal/metrics"
	"go.uber.org/zap"
)

// Instrumented 为任意 Store 记录耗时、调用次数与失败日志。
type Instrumented struct {
	inner   Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

// Instrument 包装 store；m 或 log 为空时对应功能关闭。
func Instrument(store Store, m *metrics.Metrics, log *zap.Logger) *Instrumented {
	if log == nil {
		log = zap.NewNop()
	}
	return &Instrumented{inner: store, metrics: m, log: log}
}

// Unwrap 返回被包装的存储。
func (s *Instrumented) Unwrap() Store {
	return s.inner
}

func (s *Instrumented) observe(op, key string, start time.Time, err error) {
	backend := s.inner.Name()
	if s.metrics != nil {
		s.metrics.StoreOperationsTotal.WithLabelValues(backend, op).Inc()
		s.metrics.StoreOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.StoreErrorsTotal.WithLabelValues(backend, op).Inc()
		}
	}
	if err != nil {
		s.log.Warn("kvstore operation failed",
			zap.String("backend", backend),
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *Instrumented) Get(ctx context.Context, key string) (value string, found bool, err error) {
	defer func(start time.Time) { s.observe("get", key, start, err) }(time.Now())
	return s.inner.Get(ctx, key)
}

func (s *Instrumented) Set(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { s.observe("set", key, start, err) }(time.Now())
	return s.inner.Set(ctx, key, value)
}

func (s *Instrumented) Incr(ctx context.Context, key string) (n int64, err error) {
	defer func(start time.Time) { s.observe("incr", key, start, err) }(time.Now())
	return s.inner.Incr(ctx, key)
}

func (s *Instrumented) Del(ctx context.Context, keys ...string) (err error) {
	defer func(start time.Time) {
		first := ""
		if len(keys) > 0 {
			first = keys[0]
		}
		s.observe("del", first, start, err)
	}(time.Now())
	return s.inner.Del(ctx, keys...)
}

func (s *Instrumented) ZAdd(ctx context.Context, key string, score float64, member string) (err error) {
	defer func(start time.Time) { s.observe("zadd", key, start, err) }(time.Now())
	return s.inner.ZAdd(ctx, key, score, member)
}

func (s *Instrumented) ZRange(ctx context.Context, key string, start, stop int64) (members []string, err error) {
	defer func(begin time.Time) { s.observe("zrange", key, begin, err) }(time.Now())
	return s.inner.ZRange(ctx, key, start, stop)
}

func (s *Instrumented) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (n int64, err error) {
	defer func(begin time.Time) { s.observe("zremrangebyrank", key, begin, err) }(time.Now())
	return s.inner.ZRemRangeByRank(ctx, key, start, stop)
}

func (s *Instrumented) ZCard(ctx context.Context, key string) (n int64, err error) {
	defer func(start time.Time) { s.observe("zcard", key, start, err) }(time.Now())
	return s.inner.ZCard(ctx, key)
}

func (s *Instrumented) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("ping", "", start, err) }(time.Now())
	return s.inner.Ping(ctx)
}

func (s *Instrumented) Close() error { return s.inner.Close() }
func (s *Instrumented) Name() string { return s.inner.Name() }
