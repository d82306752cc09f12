// Package server assembles the HTTP surface the documentation UI talks to.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AhamSammich/dexbee-docs/internal/config"
	"github.com/AhamSammich/dexbee-docs/internal/logging"
	"github.com/AhamSammich/dexbee-docs/internal/middleware"
	"github.com/AhamSammich/dexbee-docs/internal/monitoring"
	"github.com/AhamSammich/dexbee-docs/internal/platform"
	"github.com/AhamSammich/dexbee-docs/internal/playground"
	"github.com/AhamSammich/dexbee-docs/internal/sandbox"
	"github.com/AhamSammich/dexbee-docs/internal/theme"
	"github.com/AhamSammich/dexbee-docs/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	httpSrv  *http.Server
	store    *theme.Store
	sessions *playground.Manager
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// New creates a server from configuration.
func New(cfg *config.Config, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NewDefault()
	}

	var prefs platform.Prefs
	if cfg.Theme.PrefsPath != "" {
		prefs = platform.NewFilePrefs(cfg.Theme.PrefsPath)
	} else {
		prefs = platform.NewMemPrefs()
	}
	store := theme.NewStore(platform.NewDocument(), prefs, platform.EnvSchemeProbe{}, log)

	sessions := playground.NewManager(playground.Config{
		ArenaPrefix: cfg.Playground.ArenaPrefix,
		MaxSessions: cfg.Playground.MaxSessions,
		Sandbox:     sandbox.Config{Timeout: cfg.Sandbox.Timeout},
	}, log)

	metrics := monitoring.NewMetrics()
	handlers := NewHandlers(sessions, store, metrics, log)
	wsHandler := ws.NewHandler(store, metrics, log)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws", wsHandler.HandleConnection)

	api := router.Group("/api")
	{
		api.POST("/sessions", handlers.CreateSession)
		api.GET("/sessions/:id", handlers.GetSession)
		api.POST("/sessions/:id/initialize", handlers.InitializeSession)
		api.POST("/sessions/:id/reset", handlers.ResetSession)
		api.POST("/sessions/:id/run", handlers.RunSession)
		api.DELETE("/sessions/:id", handlers.ReleaseSession)

		api.GET("/theme", handlers.GetTheme)
		api.POST("/theme/toggle", handlers.ToggleTheme)
	}

	return &Server{
		router:   router,
		store:    store,
		sessions: sessions,
		metrics:  metrics,
		log:      log,
		httpSrv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the listener fails or Close is called.
func (s *Server) Run() error {
	s.log.Info("playground service listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close drains connections and releases every session.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpSrv.Shutdown(ctx)
	s.sessions.Close()
	s.store.Close()
	return err
}
