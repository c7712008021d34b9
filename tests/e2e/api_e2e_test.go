package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/folio/internal/content"
	"github.com/folio/internal/handler"
	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/metrics"
	"github.com/folio/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type e2eSuite struct {
	server *httptest.Server
	client *http.Client
	store  kvstore.Store
}

func newSuite(t *testing.T, opts kvstore.Options) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	contentDir := t.TempDir()
	posts := map[string]string{
		"intro":    "---\ntitle: Intro\ndate: 2024-01-01\n---\nWelcome to the blog.\n",
		"popular":  "---\ntitle: Popular\ndate: 2024-02-01\n---\nEveryone reads this.\n",
		"timeline": "---\ntitle: Timeline\ndate: 2024-03-01\n---\nA long story.\n",
	}
	for slug, body := range posts {
		require.NoError(t, os.WriteFile(filepath.Join(contentDir, slug+".md"), []byte(body), 0o644))
	}

	library, err := content.Load(contentDir)
	require.NoError(t, err)

	log := zap.NewNop()
	m := metrics.New()
	store := kvstore.Instrument(kvstore.Open(context.Background(), opts, log), m, log)
	api := handler.NewAPI(store, library, log, m, 30*time.Second)

	server := httptest.NewServer(router.SetupRouter(api, m, log, router.Options{}))
	t.Cleanup(func() {
		server.Close()
		_ = store.Close()
	})

	return &e2eSuite{server: server, client: server.Client(), store: store}
}

func (s *e2eSuite) request(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func sqliteOptions(t *testing.T) kvstore.Options {
	return kvstore.Options{Driver: "sqlite", DatabasePath: filepath.Join(t.TempDir(), "folio.db")}
}

func TestViewsAndReadingTimeScenario(t *testing.T) {
	s := newSuite(t, sqliteOptions(t))
	require.Equal(t, "sqlite", s.store.Name())

	status, payload := s.request(t, http.MethodGet, "/api/views?slug=intro", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), payload["viewCount"])

	for i := 0; i < 3; i++ {
		status, _ = s.request(t, http.MethodPost, "/api/views", map[string]any{"slug": "intro"})
		require.Equal(t, http.StatusOK, status)
	}

	_, payload = s.request(t, http.MethodGet, "/api/views?slug=intro", nil)
	assert.Equal(t, float64(3), payload["viewCount"])

	status, _ = s.request(t, http.MethodPost, "/api/reading-time", map[string]any{"slug": "intro", "readingTime": 45})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.request(t, http.MethodPost, "/api/reading-time", map[string]any{"slug": "intro", "readingTime": 15})
	require.Equal(t, http.StatusOK, status)

	status, payload = s.request(t, http.MethodGet, "/api/stats?slug=intro", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{
		"slug":               "intro",
		"viewCount":          float64(3),
		"todayViews":         float64(3),
		"averageReadingTime": float64(45),
		"totalReads":         float64(1),
	}, payload)
}

func TestInvalidReadingTimeLeavesStateUntouched(t *testing.T) {
	s := newSuite(t, sqliteOptions(t))

	for _, body := range []map[string]any{
		{"slug": "intro", "readingTime": -5},
		{"slug": "intro", "readingTime": "abc"},
		{"readingTime": 60},
	} {
		status, payload := s.request(t, http.MethodPost, "/api/reading-time", body)
		assert.Equal(t, http.StatusBadRequest, status, "body %v", body)
		assert.NotEmpty(t, payload["error"])
	}

	card, err := s.store.ZCard(context.Background(), "reading-time:intro")
	require.NoError(t, err)
	assert.Zero(t, card)
}

func TestPopularRanking(t *testing.T) {
	s := newSuite(t, sqliteOptions(t))

	views := map[string]int{"popular": 4, "timeline": 2, "intro": 2}
	for slug, n := range views {
		for i := 0; i < n; i++ {
			s.request(t, http.MethodPost, "/api/views", map[string]any{"slug": slug})
		}
	}
	s.request(t, http.MethodPost, "/api/reading-time", map[string]any{"slug": "timeline", "readingTime": 240})
	s.request(t, http.MethodPost, "/api/reading-time", map[string]any{"slug": "intro", "readingTime": 40})

	status, payload := s.request(t, http.MethodGet, "/api/popular?limit=5", nil)
	require.Equal(t, http.StatusOK, status)

	posts := payload["posts"].([]any)
	require.Len(t, posts, 3)

	var order []string
	for _, raw := range posts {
		post := raw.(map[string]any)
		order = append(order, fmt.Sprint(post["slug"]))
		assert.Positive(t, post["viewCount"].(float64))
	}
	assert.Equal(t, []string{"popular", "timeline", "intro"}, order)
}

func TestUnreachableStoreFailsOpen(t *testing.T) {
	s := newSuite(t, kvstore.Options{Driver: "redis", URL: "redis://127.0.0.1:1"})
	require.Equal(t, "nop", s.store.Name())

	status, payload := s.request(t, http.MethodPost, "/api/views", map[string]any{"slug": "intro"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, payload["success"])

	status, payload = s.request(t, http.MethodGet, "/api/views?slug=intro", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), payload["viewCount"])

	status, payload = s.request(t, http.MethodGet, "/api/posts/intro", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Intro", payload["post"].(map[string]any)["title"])

	status, payload = s.request(t, http.MethodGet, "/api/popular", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, payload["posts"])
}
