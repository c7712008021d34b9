package router

import (
	"net/http"

	"github.com/folio/internal/handler"
	"github.com/folio/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options 汇总路由层需要的可选配置。
type Options struct {
	// AllowOrigins 为空时允许任意来源，客户端埋点通常来自同一站点的不同域名。
	AllowOrigins []string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, m *metrics.Metrics, log *zap.Logger, opts Options) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestID())
	r.Use(requestLogger(log))
	r.Use(gin.CustomRecovery(recoverWithJSON(log)))
	if m != nil {
		r.Use(requestMetrics(m))
	}

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", api.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/views", api.RecordView)
		apiGroup.GET("/views", api.GetViewCount)

		apiGroup.POST("/reading-time", api.RecordReadingTime)
		apiGroup.GET("/reading-time", api.GetReadingTime)

		apiGroup.GET("/stats", api.GetStats)
		apiGroup.GET("/popular", api.GetPopular)

		apiGroup.GET("/posts", api.ListPosts)
		apiGroup.GET("/posts/:slug", api.GetPost)
	}

	return r
}
