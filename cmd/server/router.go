package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/OpenNSW/aadhaar/internal/aadhaar"
	"github.com/OpenNSW/aadhaar/internal/config"
	"github.com/OpenNSW/aadhaar/internal/database"
	"github.com/OpenNSW/aadhaar/internal/middleware"
	"github.com/OpenNSW/aadhaar/internal/uploads"
)

// multipartOverhead leaves room for the form framing around the document.
const multipartOverhead = 1 << 20

func newRouter(cfg *config.Config, db *gorm.DB, service *aadhaar.Service, uploadService *uploads.UploadService, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), middleware.CORS(&cfg.CORS))
	r.MaxMultipartMemory = cfg.Upload.MaxSize + multipartOverhead

	r.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "aadhaar-verification"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	aadhaar.NewHandler(service).RegisterRoutes(api)
	uploads.NewHTTPHandler(uploadService).RegisterRoutes(api)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
