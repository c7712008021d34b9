package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/folio/internal/kvstore"
	"go.uber.org/zap"
)

const maxSlugLength = 200

var (
	// ErrInvalidSlug 表示 slug 为空或包含不允许的字符。
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrInvalidReadingTime 表示阅读时长不是有限的正数。
	ErrInvalidReadingTime = errors.New("reading time must be a positive number")
)

// NormalizeSlug 去除首尾空白并校验 slug，slug 会直接拼进存储键，因此禁止冒号与空白。
func NormalizeSlug(raw string) (string, error) {
	slug := strings.TrimSpace(raw)
	if slug == "" || len(slug) > maxSlugLength {
		return "", ErrInvalidSlug
	}
	for _, r := range slug {
		if r == ':' || r == '/' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", ErrInvalidSlug
		}
	}
	return slug, nil
}

func viewsKey(slug string) string {
	return "pageviews:" + slug
}

func dailyViewsKey(slug, day string) string {
	return "pageviews:" + slug + ":" + day
}

func readingSamplesKey(slug string) string {
	return "reading-time:" + slug
}

func readingAverageKey(slug string) string {
	return "reading-time:" + slug + ":avg"
}

// readInt 读取整数值；键不存在、值非法或存储故障时都返回 0。
func readInt(ctx context.Context, store kvstore.Store, log *zap.Logger, key string) int64 {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		log.Debug("store read failed, using zero", zap.String("key", key), zap.Error(err))
		return 0
	}
	if !found {
		return 0
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < 0 {
		log.Debug("ignoring malformed counter", zap.String("key", key), zap.String("value", raw))
		return 0
	}
	return value
}
