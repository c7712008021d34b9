package handler

import (
	"time"

	"github.com/folio/internal/content"
	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/metrics"
	"github.com/folio/internal/service"
	"go.uber.org/zap"
)

// postSource 提供文章列表与单篇文章，content.Library 是默认实现。
type postSource interface {
	List() []content.Post
	Get(slug string) (content.Post, error)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	store   kvstore.Store
	posts   postSource
	views   *service.ViewService
	reading *service.ReadingTimeService
	popular *service.PopularService
	stats   *service.StatsService
	log     *zap.Logger
}

// NewAPI constructs a handler set with shared services.
// minReading 为非正数时使用默认的 30 秒阈值。
func NewAPI(store kvstore.Store, posts postSource, log *zap.Logger, m *metrics.Metrics, minReading time.Duration) *API {
	if log == nil {
		log = zap.NewNop()
	}

	views := service.NewViewService(store, log, m)
	reading := service.NewReadingTimeService(store, log, m).WithMinReadingTime(minReading)

	return &API{
		store:   store,
		posts:   posts,
		views:   views,
		reading: reading,
		popular: service.NewPopularService(posts, views, reading, m),
		stats:   service.NewStatsService(views, reading),
		log:     log,
	}
}

// Views exposes the view tracker, used by the CLI commands.
func (a *API) Views() *service.ViewService {
	return a.views
}

// Popular exposes the popularity ranker, used by the CLI commands.
func (a *API) Popular() *service.PopularService {
	return a.popular
}

// Stats exposes the combined stats service, used by the CLI commands.
func (a *API) Stats() *service.StatsService {
	return a.stats
}
