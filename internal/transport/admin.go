package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/facility-booking/internal/monitor"
)

// AdminHandler обслуживает служебный HTTP: health, метрики, статистика.
// Сам протокол бронирования остается на UDP.
type AdminHandler struct {
	registry      *monitor.Registry
	replyCacheLen func() int // nil, если кэш ответов живет в Redis
	version       string
}

func NewAdminHandler(registry *monitor.Registry, replyCacheLen func() int, version string) *AdminHandler {
	return &AdminHandler{
		registry:      registry,
		replyCacheLen: replyCacheLen,
		version:       version,
	}
}

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func InitAdminRoutes(h *AdminHandler) *gin.Engine {

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(adminLogger())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/stats", h.Stats)
	}

	return router
}

func (h *AdminHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats := gin.H{
		"live_subscriptions": h.registry.CountLive(time.Now()),
	}
	if h.replyCacheLen != nil {
		stats["reply_cache_entries"] = h.replyCacheLen()
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: stats})
}

func adminLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})

		if c.Writer.Status() >= 400 {
			entry.Error("Admin request failed")
		} else {
			entry.Info("Admin request processed")
		}
	}
}
