package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/folio/internal/content"
	"github.com/gin-gonic/gin"
)

type postDetail struct {
	content.Post
	HTML string `json:"html"`
}

// ListPosts returns metadata of all published posts, newest first.
func (a *API) ListPosts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"posts": a.posts.List()})
}

// GetPost returns a rendered post. The view count is read best-effort and
// never prevents the post from being served.
func (a *API) GetPost(c *gin.Context) {
	post, err := a.posts.Get(strings.TrimSpace(c.Param("slug")))
	if errors.Is(err, content.ErrNotFound) {
		respondError(c, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	viewCount, countErr := a.views.ViewCount(c.Request.Context(), post.Slug)
	if countErr != nil {
		viewCount = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"post":      postDetail{Post: post, HTML: string(post.HTML)},
		"viewCount": viewCount,
	})
}
