package kvstore

import (
	"context"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"go.uber.org/zap"
)

const startupPingTimeout = 5 * time.Second

// Options 描述存储后端的连接参数，由配置层在启动时一次性给出。
type Options struct {
	// Driver 取值 redis、sqlite、memory；为空或 none 时禁用统计存储。
	Driver string
	// URL 是 redis:// 或 rediss:// 连接串。
	URL string
	// Token 非空时作为 Redis 密码，覆盖 URL 中的密码（托管 Redis 的访问令牌）。
	Token string
	// DatabasePath 是 sqlite 后端的数据库文件路径。
	DatabasePath string
}

// Open 按配置选择存储后端。
//
// 该函数从不返回错误：配置缺失、驱动未知或启动探活失败时都会退化为 NopStore，
// 保证统计存储故障不会影响内容服务。这一选择只在进程启动时做一次。
func Open(ctx context.Context, opts Options, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}

	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	switch driver {
	case "", "none":
		log.Info("analytics store not configured, analytics disabled")
		return NewNopStore()

	case "memory":
		log.Info("using in-memory analytics store")
		return NewMemoryStore()

	case "sqlite":
		gdb, err := db.Open(opts.DatabasePath)
		if err != nil {
			log.Warn("failed to open sqlite analytics store, analytics disabled",
				zap.String("path", opts.DatabasePath), zap.Error(err))
			return NewNopStore()
		}
		return verify(ctx, NewSQLStore(gdb), log)

	case "redis":
		if strings.TrimSpace(opts.URL) == "" {
			log.Warn("STORE_URL is empty, analytics disabled")
			return NewNopStore()
		}
		store, err := NewRedisStore(opts.URL, opts.Token)
		if err != nil {
			log.Warn("invalid redis configuration, analytics disabled", zap.Error(err))
			return NewNopStore()
		}
		return verify(ctx, store, log)

	default:
		log.Warn("unknown analytics store driver, analytics disabled", zap.String("driver", driver))
		return NewNopStore()
	}
}

func verify(ctx context.Context, store Store, log *zap.Logger) Store {
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		log.Warn("analytics store unreachable, analytics disabled",
			zap.String("backend", store.Name()), zap.Error(err))
		_ = store.Close()
		return NewNopStore()
	}

	log.Info("analytics store connected", zap.String("backend", store.Name()))
	return store
}
