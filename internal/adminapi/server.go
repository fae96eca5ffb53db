// Package adminapi is the operational HTTP surface: health, per-instrument
// book stats, and Prometheus metrics.
package adminapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	limiter "github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/tradsys/matchcore/internal/matching"
)

// StatsSource is the subset of matching.Router the admin API reads.
type StatsSource interface {
	Snapshot() []matching.Snapshot
}

// Server wraps a gin.Engine exposing /healthz, /stats, and /metrics.
type Server struct {
	engine *gin.Engine
	addr   string
}

// Config configures the admin HTTP surface.
type Config struct {
	ListenAddr   string
	JWTSecret    string
	CORSOrigins  []string
	RateLimitRPS int
}

// NewServer builds the gin engine and routes. If cfg.JWTSecret is empty,
// /stats is left unauthenticated (useful for local development).
func NewServer(cfg Config, source StatsSource, logger *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(ginZapRecovery(logger))

	if len(cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET"},
		}))
	}

	if cfg.RateLimitRPS > 0 {
		rate := limiter.Rate{Period: time.Second, Limit: int64(cfg.RateLimitRPS)}
		store := memorystore.NewStore()
		instance := limiter.New(store, rate)
		engine.Use(ginmiddleware.NewMiddleware(instance))
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	statsGroup := engine.Group("/stats")
	if cfg.JWTSecret != "" {
		statsGroup.Use(jwtAuth(cfg.JWTSecret))
	}
	statsGroup.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Snapshot())
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{engine: engine, addr: cfg.ListenAddr}, nil
}

// Run starts the HTTP server; it blocks until the server stops.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

func ginZapRecovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("admin api panic recovered", zap.Any("recover", r))
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// jwtAuth validates a Bearer token against secret.
func jwtAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := header[len(prefix):]
		_, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}
