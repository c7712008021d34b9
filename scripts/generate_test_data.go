package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/content"
	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/service"
	"go.uber.org/zap"
)

// samplePosts 在 content 目录为空时写入，便于本地预览。
var samplePosts = map[string]string{
	"hello-world": `---
title: Hello World
date: 2024-01-05
tags: [life]
---
第一篇文章，记录一下搭建这个站点的过程。
`,
	"go-error-handling": `---
title: Go 错误处理的几种写法
date: 2024-03-18
tags: [go, 技术]
---
Go 的错误是值。本文比较 sentinel error、错误包装与自定义错误类型。

` + "```go\nif errors.Is(err, ErrNotFound) {\n\treturn nil\n}\n```\n",
	"reading-list": `---
title: 2024 阅读清单
date: 2024-06-30
tags: [reading]
---
上半年读完的书和一些随手的笔记。
`,
}

type seedSummary struct {
	Posts    int
	Views    int
	Readings int
	Ignored  int
}

// 测试数据生成器：为每篇文章写入随机的浏览量与阅读时长样本
func main() {
	cfg := config.Load()
	zlog := logger.New(cfg.LogLevel, "")
	defer zlog.Sync()

	written, err := ensureSamplePosts(cfg.ContentDir)
	if err != nil {
		log.Fatal("写入示例文章失败:", err)
	}
	if written > 0 {
		fmt.Printf("已在 %s 写入 %d 篇示例文章\n", cfg.ContentDir, written)
	}

	library, err := content.Load(cfg.ContentDir)
	if err != nil {
		log.Fatal("加载文章失败:", err)
	}

	ctx := context.Background()
	store := kvstore.Open(ctx, cfg.StoreOptions(), zlog)
	defer store.Close()
	if store.Name() == "nop" {
		log.Fatal("统计存储未配置或不可用，请设置 STORE_DRIVER")
	}

	fmt.Println("开始生成测试数据...")
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 42))
	summary, err := seedAnalytics(ctx, store, library.List(), rng, cfg.MinReadingTime, zlog)
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("文章: %d 篇\n", summary.Posts)
	fmt.Printf("浏览: %d 次\n", summary.Views)
	fmt.Printf("阅读样本: %d 条（%d 条低于阈值被忽略）\n", summary.Readings, summary.Ignored)
}

func ensureSamplePosts(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	if len(entries) > 0 {
		return 0, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	for slug, body := range samplePosts {
		if err := os.WriteFile(filepath.Join(dir, slug+".md"), []byte(body), 0o644); err != nil {
			return 0, err
		}
	}
	return len(samplePosts), nil
}

func seedAnalytics(ctx context.Context, store kvstore.Store, posts []content.Post, rng *rand.Rand, minReading time.Duration, zlog *zap.Logger) (seedSummary, error) {
	views := service.NewViewService(store, zlog, nil)
	reading := service.NewReadingTimeService(store, zlog, nil).WithMinReadingTime(minReading)

	summary := seedSummary{Posts: len(posts)}
	for _, post := range posts {
		for i := rng.IntN(40) + 1; i > 0; i-- {
			if _, err := views.RecordView(ctx, post.Slug); err != nil {
				return summary, fmt.Errorf("record view for %s: %w", post.Slug, err)
			}
			summary.Views++
		}

		for i := rng.IntN(15); i > 0; i-- {
			seconds := float64(rng.IntN(600) + 5)
			recorded, err := reading.RecordReadingTime(ctx, post.Slug, seconds)
			if err != nil {
				return summary, fmt.Errorf("record reading time for %s: %w", post.Slug, err)
			}
			if recorded {
				summary.Readings++
			} else {
				summary.Ignored++
			}
		}
	}
	return summary, nil
}
