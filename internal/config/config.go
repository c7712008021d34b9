package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/folio/internal/kvstore"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置，启动时解析一次，之后只读。
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	ContentDir     string
	DatabasePath   string
	StoreDriver    string
	StoreURL       string
	StoreToken     string
	LogLevel       string
	LogFile        string
	AllowOrigins   []string
	MinReadingTime time.Duration
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若工作目录存在 .env 文件，会先加载它；已存在的环境变量不会被覆盖。
func Load() AppConfig {
	_ = godotenv.Load()

	port := envOr("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	minReading := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("MIN_READING_SECONDS")); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			minReading = time.Duration(secs) * time.Second
		}
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		GinMode:        envOr("GIN_MODE", "release"),
		ContentDir:     envOr("CONTENT_DIR", "content/posts"),
		DatabasePath:   envOr("DATABASE_PATH", "folio.db"),
		StoreDriver:    strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))),
		StoreURL:       strings.TrimSpace(os.Getenv("STORE_URL")),
		StoreToken:     strings.TrimSpace(os.Getenv("STORE_TOKEN")),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFile:        envOr("LOG_FILE", "folio.log"),
		AllowOrigins:   splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
		MinReadingTime: minReading,
	}
}

// StoreOptions 把存储相关的配置转换为 kvstore.Open 需要的参数。
func (c AppConfig) StoreOptions() kvstore.Options {
	return kvstore.Options{
		Driver:       c.StoreDriver,
		URL:          c.StoreURL,
		Token:        c.StoreToken,
		DatabasePath: c.DatabasePath,
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
