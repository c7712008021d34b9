package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/folio/internal/content"
	"github.com/folio/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPopularLimit = 5
	maxPopularLimit     = 50
	popularFanout       = 8
)

// PostLister 提供全部已发布文章的元数据。
type PostLister interface {
	List() []content.Post
}

// PopularPost 是热门文章列表中的一项。
type PopularPost struct {
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Excerpt            string    `json:"excerpt"`
	Date               time.Time `json:"date"`
	Tags               []string  `json:"tags"`
	ViewCount          int64     `json:"viewCount"`
	AverageReadingTime int64     `json:"averageReadingTime"`
}

// PopularService 根据浏览量和平均阅读时长给文章排序。
type PopularService struct {
	posts   PostLister
	views   *ViewService
	reading *ReadingTimeService
	metrics *metrics.Metrics
}

// NewPopularService 创建 PopularService，m 可以为空。
func NewPopularService(posts PostLister, views *ViewService, reading *ReadingTimeService, m *metrics.Metrics) *PopularService {
	return &PopularService{posts: posts, views: views, reading: reading, metrics: m}
}

// NormalizePopularLimit 非正数回退到默认值 5，并限制最大值。
func NormalizePopularLimit(limit int) int {
	if limit <= 0 {
		return defaultPopularLimit
	}
	return min(limit, maxPopularLimit)
}

// Popular 返回最多 limit 篇有浏览记录的文章，按浏览量倒序，
// 浏览量相同按平均阅读时长倒序，再按 slug 保证结果稳定。
func (s *PopularService) Popular(ctx context.Context, limit int) ([]PopularPost, error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.PopularQueryDuration.Observe(time.Since(start).Seconds()) }()
	}

	limit = NormalizePopularLimit(limit)
	posts := s.posts.List()
	candidates := make([]PopularPost, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(popularFanout)
	for i, post := range posts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// 非法 slug 的文章读不到计数，按 0 处理即可
			views, _ := s.views.ViewCount(gctx, post.Slug)
			average, _ := s.reading.AverageReadingTime(gctx, post.Slug)
			candidates[i] = PopularPost{
				Slug:               post.Slug,
				Title:              post.Title,
				Excerpt:            post.Excerpt,
				Date:               post.Date,
				Tags:               post.Tags,
				ViewCount:          views,
				AverageReadingTime: average,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := slices.DeleteFunc(candidates, func(p PopularPost) bool {
		return p.ViewCount <= 0
	})
	slices.SortFunc(ranked, func(a, b PopularPost) int {
		if diff := cmp.Compare(b.ViewCount, a.ViewCount); diff != 0 {
			return diff
		}
		if diff := cmp.Compare(b.AverageReadingTime, a.AverageReadingTime); diff != 0 {
			return diff
		}
		return cmp.Compare(a.Slug, b.Slug)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
