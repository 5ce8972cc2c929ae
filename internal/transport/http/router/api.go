package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipe-share-api/internal/core/config"
	"recipe-share-api/internal/core/server"
	mdw "recipe-share-api/internal/transport/http/middleware"
	resp "recipe-share-api/internal/transport/http/response"
)

// Limits 入口层限流与超时
type Limits struct {
	MaxConcurrency int64
	MaxBodyBytes   int64
	Timeout        time.Duration
}

// LimitsFrom 从配置换算
func LimitsFrom(h config.HTTP) Limits {
	return Limits{
		MaxConcurrency: h.MaxConcurrency,
		MaxBodyBytes:   int64(h.MaxBodyMB) << 20,
		Timeout:        time.Duration(h.HandlerTimeoutSec) * time.Second,
	}
}

func baseEngine(l *zap.Logger, o server.Options, lim Limits) *gin.Engine {
	if l == nil {
		l = zap.NewNop()
	}
	if lim.MaxBodyBytes <= 0 {
		lim.MaxBodyBytes = 16 << 20
	}
	r := server.NewRouter(o,
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.ConcurrencyLimit(lim.MaxConcurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "Route not found"))
	})
	return r
}

// NewAPIEngine 用户端：/api/v1 下挂载注册表里的全部 API 模块
func NewAPIEngine(l *zap.Logger, o server.Options, lim Limits, reg *Registry) *gin.Engine {
	r := baseEngine(l, o, lim)
	api := r.Group("/api/v1")
	reg.MountAllAPI(api)
	return r
}
