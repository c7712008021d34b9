package service

import "context"

// CombinedStats 汇总单篇文章的全部统计。
type CombinedStats struct {
	Slug               string `json:"slug"`
	ViewCount          int64  `json:"viewCount"`
	TodayViews         int64  `json:"todayViews"`
	AverageReadingTime int64  `json:"averageReadingTime"`
	TotalReads         int64  `json:"totalReads"`
}

// StatsService 组合浏览量与阅读时长统计。
type StatsService struct {
	views   *ViewService
	reading *ReadingTimeService
}

// NewStatsService 创建 StatsService。
func NewStatsService(views *ViewService, reading *ReadingTimeService) *StatsService {
	return &StatsService{views: views, reading: reading}
}

// Combined 返回总浏览量、当日浏览量和阅读时长统计，缺失的数据均为 0。
func (s *StatsService) Combined(ctx context.Context, slug string) (CombinedStats, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return CombinedStats{}, err
	}

	views, err := s.views.ViewCount(ctx, slug)
	if err != nil {
		return CombinedStats{}, err
	}
	today, err := s.views.TodayViews(ctx, slug)
	if err != nil {
		return CombinedStats{}, err
	}
	reading, err := s.reading.Stats(ctx, slug)
	if err != nil {
		return CombinedStats{}, err
	}

	return CombinedStats{
		Slug:               slug,
		ViewCount:          views,
		TodayViews:         today,
		AverageReadingTime: reading.AverageReadingTime,
		TotalReads:         reading.TotalReads,
	}, nil
}
