package handler_test

import (
	"net/http"
	"testing"

	"github.com/folio/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndGetPosts(t *testing.T) {
	srv := newTestServer(t, kvstore.NewMemoryStore(), map[string]string{
		"older": "---\ntitle: Older\ndate: 2023-01-01\n---\nOld words here\n",
		"newer": "---\ntitle: Newer\ndate: 2024-01-01\ntags: [go]\n---\n**Fresh** words\n",
		"draft": "---\ntitle: Draft\ndraft: true\n---\nHidden\n",
	})

	rr, payload := srv.do(t, http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := payload["posts"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].(map[string]any)["slug"])
	assert.NotContains(t, list[0].(map[string]any), "html")

	srv.do(t, http.MethodPost, "/api/views", `{"slug":"newer"}`)

	rr, payload = srv.do(t, http.MethodGet, "/api/posts/newer", "")
	require.Equal(t, http.StatusOK, rr.Code)
	post := payload["post"].(map[string]any)
	assert.Equal(t, "Newer", post["title"])
	assert.Contains(t, post["html"], "<strong>Fresh</strong>")
	assert.Equal(t, float64(1), post["estimatedReadingMinutes"])
	assert.Equal(t, float64(1), payload["viewCount"])
}

func TestGetPostNotFound(t *testing.T) {
	srv := newTestServer(t, kvstore.NewMemoryStore(), map[string]string{
		"draft": "---\ndraft: true\n---\nHidden\n",
	})

	for _, slug := range []string{"missing", "draft"} {
		rr, payload := srv.do(t, http.MethodGet, "/api/posts/"+slug, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "post not found", payload["error"])
	}
}

func TestHealthReportsStore(t *testing.T) {
	srv := newTestServer(t, kvstore.NewMemoryStore(), nil)

	rr, payload := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "memory", payload["store"])
	assert.Equal(t, true, payload["storeReachable"])
}
