package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type recordViewRequest struct {
	Slug string `json:"slug"`
}

type recordReadingTimeRequest struct {
	Slug        string   `json:"slug"`
	ReadingTime *float64 `json:"readingTime"`
}

// RecordView increments the total and daily view counters of a post.
func (a *API) RecordView(c *gin.Context) {
	var req recordViewRequest
	if !bindJSON(c, &req, "invalid request body") {
		return
	}

	total, err := a.views.RecordView(c.Request.Context(), req.Slug)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":      normalizedSlug(req.Slug),
		"viewCount": total,
		"success":   true,
	})
}

// GetViewCount returns the total view count of a post, 0 when never viewed.
func (a *API) GetViewCount(c *gin.Context) {
	slug := c.Query("slug")
	count, err := a.views.ViewCount(c.Request.Context(), slug)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":      normalizedSlug(slug),
		"viewCount": count,
	})
}

// RecordReadingTime accepts a reading-time beacon sent when a reader leaves a post.
// Beacons below the minimum reading time are accepted but not stored.
func (a *API) RecordReadingTime(c *gin.Context) {
	var req recordReadingTimeRequest
	if !bindJSON(c, &req, "readingTime must be a positive number of seconds") {
		return
	}
	if req.ReadingTime == nil {
		respondError(c, http.StatusBadRequest, "readingTime is required")
		return
	}

	if _, err := a.reading.RecordReadingTime(c.Request.Context(), req.Slug, *req.ReadingTime); err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":        normalizedSlug(req.Slug),
		"readingTime": *req.ReadingTime,
		"success":     true,
	})
}

// GetReadingTime returns the rolling average reading time and sample count of a post.
func (a *API) GetReadingTime(c *gin.Context) {
	slug := c.Query("slug")
	stats, err := a.reading.Stats(c.Request.Context(), slug)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":               normalizedSlug(slug),
		"averageReadingTime": stats.AverageReadingTime,
		"totalReads":         stats.TotalReads,
	})
}

// GetStats returns views, today's views and reading-time stats in one payload.
func (a *API) GetStats(c *gin.Context) {
	stats, err := a.stats.Combined(c.Request.Context(), c.Query("slug"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetPopular returns the most viewed posts.
func (a *API) GetPopular(c *gin.Context) {
	limit := parsePositiveInt(c.DefaultQuery("limit", "5"), 5)

	posts, err := a.popular.Popular(c.Request.Context(), limit)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
