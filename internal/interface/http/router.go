package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xreal/faqbase/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	faqs := router.Group("/faqs")
	{
		faqs.POST("", handler.CreateFAQ)
		faqs.GET("", handler.ListFAQs)
		faqs.GET("/search", handler.SearchFAQs)
		faqs.DELETE("/all", handler.DeleteAllFAQs)
		faqs.GET("/:id", handler.GetFAQ)
		faqs.PUT("/:id", handler.UpdateFAQ)
		faqs.DELETE("/:id", handler.DeleteFAQ)
	}

	tags := router.Group("/tags")
	{
		tags.POST("", handler.CreateTag)
		tags.GET("", handler.ListTags)
		tags.GET("/active", handler.ListActiveTags)
		tags.GET("/:name", handler.GetTag)
		tags.PUT("/:name", handler.UpdateTag)
		tags.DELETE("/:name", handler.DeleteTag)
	}

	router.POST("/api/excel/upload", handler.UploadExcel)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout:   cfg.HTTP.WriteTimeout.Std(),
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
