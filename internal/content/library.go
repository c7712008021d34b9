// Package content 从磁盘加载 Markdown 文章，提供文章元数据与渲染后的 HTML。
package content

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// ErrNotFound 表示文章不存在或仍是草稿。
var ErrNotFound = errors.New("post not found")

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// Post 是一篇已发布文章的元数据及渲染结果。
type Post struct {
	Slug           string        `json:"slug"`
	Title          string        `json:"title"`
	Excerpt        string        `json:"excerpt"`
	Date           time.Time     `json:"date"`
	Tags           []string      `json:"tags"`
	WordCount      int           `json:"wordCount"`
	ReadingMinutes int           `json:"estimatedReadingMinutes"`
	HTML           template.HTML `json:"-"`
}

type frontMatter struct {
	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Excerpt string   `yaml:"excerpt"`
	Tags    []string `yaml:"tags"`
	Draft   bool     `yaml:"draft"`
}

// Library 持有 content 目录下全部已发布文章，可安全并发读取。
type Library struct {
	dir string

	mu     sync.RWMutex
	posts  map[string]Post
	sorted []Post
}

// Load 读取 dir 下的 *.md 文件。目录不存在时返回空库。
func Load(dir string) (*Library, error) {
	lib := &Library{dir: dir}
	if err := lib.Reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Reload 重新扫描目录并原子替换已加载的文章。
func (l *Library) Reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read content dir: %w", err)
	}

	posts := make(map[string]Post, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), readErr)
		}

		slug := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		post, draft, parseErr := parsePost(slug, raw)
		if parseErr != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), parseErr)
		}
		if draft {
			continue
		}
		posts[slug] = post
	}

	sorted := make([]Post, 0, len(posts))
	for _, post := range posts {
		sorted = append(sorted, post)
	}
	slices.SortFunc(sorted, func(a, b Post) int {
		if diff := b.Date.Compare(a.Date); diff != 0 {
			return diff
		}
		return cmp.Compare(a.Slug, b.Slug)
	})

	l.mu.Lock()
	l.posts = posts
	l.sorted = sorted
	l.mu.Unlock()
	return nil
}

// List 返回按日期倒序排列的全部已发布文章。
func (l *Library) List() []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.sorted)
}

// Get 按 slug 查找文章。
func (l *Library) Get(slug string) (Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	post, ok := l.posts[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return post, nil
}

func parsePost(slug string, raw []byte) (Post, bool, error) {
	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return Post{}, false, err
	}

	var fm frontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return Post{}, false, fmt.Errorf("front matter: %w", err)
		}
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return Post{}, false, err
	}

	rendered, err := renderMarkdown(body)
	if err != nil {
		return Post{}, false, err
	}

	text, err := extractText(rendered)
	if err != nil {
		return Post{}, false, err
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = slug
	}

	excerpt := strings.TrimSpace(fm.Excerpt)
	if excerpt == "" {
		excerpt = text.excerpt
	}

	tags := make([]string, 0, len(fm.Tags))
	for _, tag := range fm.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return Post{
		Slug:           slug,
		Title:          title,
		Excerpt:        excerpt,
		Date:           date,
		Tags:           tags,
		WordCount:      text.words,
		ReadingMinutes: estimateMinutes(text.words),
		HTML:           rendered,
	}, fm.Draft, nil
}

// splitFrontMatter 拆分以 --- 包裹的 YAML 头部与正文；没有头部时整个文件都是正文。
func splitFrontMatter(raw []byte) (meta, body []byte, err error) {
	normalized := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, normalized, nil
	}

	rest := normalized[len("---\n"):]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return nil, rest[len("---\n"):], nil
	}
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, errors.New("unterminated front matter")
	}

	meta = rest[:end]
	body = rest[end+len("\n---"):]
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = nil
	}
	return meta, body, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04"} {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func renderMarkdown(content []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert(content, &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
