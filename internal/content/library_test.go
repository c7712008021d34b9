package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePost(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadParsesFrontMatterAndSkipsDrafts(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "intro.md", "---\ntitle: Hello World\ndate: 2024-05-01\ntags: [go, \" notes \"]\n---\nFirst paragraph with *five* words.\n")
	writePost(t, dir, "second.md", "---\ntitle: Second\ndate: 2024-06-01\nexcerpt: Custom excerpt\n---\n# Heading\n\nBody text.\n")
	writePost(t, dir, "wip.md", "---\ntitle: Work in progress\ndraft: true\n---\nSecret\n")
	writePost(t, dir, "notes.txt", "not markdown")

	lib, err := Load(dir)
	require.NoError(t, err)

	posts := lib.List()
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Slug)
	assert.Equal(t, "intro", posts[1].Slug)

	intro, err := lib.Get("intro")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", intro.Title)
	assert.Equal(t, []string{"go", "notes"}, intro.Tags)
	assert.True(t, intro.Date.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "First paragraph with five words.", intro.Excerpt)
	assert.Equal(t, 5, intro.WordCount)
	assert.Equal(t, 1, intro.ReadingMinutes)
	assert.Contains(t, string(intro.HTML), "<em>five</em>")

	second, err := lib.Get("second")
	require.NoError(t, err)
	assert.Equal(t, "Custom excerpt", second.Excerpt)

	_, err = lib.Get("wip")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMissingDirIsEmpty(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, lib.List())
}

func TestLoadRejectsBrokenFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "bad.md", "---\ntitle: never closed\n")

	_, err := Load(dir)
	assert.ErrorContains(t, err, "unterminated front matter")

	dir = t.TempDir()
	writePost(t, dir, "bad-date.md", "---\ndate: yesterday\n---\nbody\n")
	_, err = Load(dir)
	assert.ErrorContains(t, err, "invalid date")
}

func TestReloadPicksUpNewPosts(t *testing.T) {
	dir := t.TempDir()
	lib, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, lib.List())

	writePost(t, dir, "fresh.md", "No front matter here.\n")
	require.NoError(t, lib.Reload())

	post, err := lib.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", post.Title)
	assert.True(t, post.Date.IsZero())
}

func TestRenderSanitizesHTML(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "xss.md", "Hello <script>alert(1)</script> world\n")

	lib, err := Load(dir)
	require.NoError(t, err)

	post, err := lib.Get("xss")
	require.NoError(t, err)
	assert.NotContains(t, string(post.HTML), "<script>")
}

func TestCountWordsAndEstimate(t *testing.T) {
	assert.Equal(t, 4, countWords("hello, brave new world"))
	assert.Equal(t, 6, countWords("写代码 and 读书"))
	assert.Equal(t, 0, countWords("  \n "))

	assert.Equal(t, 1, estimateMinutes(0))
	assert.Equal(t, 1, estimateMinutes(200))
	assert.Equal(t, 2, estimateMinutes(201))
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("字", 200)
	got := truncateRunes(long, 160)
	assert.Equal(t, strings.Repeat("字", 160)+"…", got)
	assert.Equal(t, "short", truncateRunes("short", 160))
}
