package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aefremenko24/quantifying-happiness/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	entryH *EntryHandler,
	suggestionH *SuggestionHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.POST("/users", userH.Register)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.Refresh)

	entries := r.Group("/entries")
	entries.Use(JWTAuthMiddleware(jwtSvc))
	entries.GET("", entryH.ListDays)
	entries.POST("/import", entryH.ImportCSV)
	entries.GET("/:day", entryH.GetDay)
	entries.PUT("/:day", entryH.UpsertMetrics)
	entries.PATCH("/:day/score", entryH.RateDay)
	entries.DELETE("/:day", entryH.DeleteDay)
	entries.GET("/:day/similar", entryH.SimilarDays)

	suggestions := r.Group("/suggestions")
	suggestions.Use(JWTAuthMiddleware(jwtSvc))
	suggestions.POST("", suggestionH.Suggest)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
