// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"estate_backend/internal/auth"
	"estate_backend/internal/config"
	"estate_backend/internal/filestorage"
	"estate_backend/internal/jobs"
	"estate_backend/internal/listing"
	"estate_backend/internal/middleware"
	"estate_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Jobs
	orphanAuditJob *jobs.OrphanAuditJob
}

// Handlers groups the module handlers mounted under /api/v1.
type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Listing *listing.Handler
	Upload  *filestorage.Handler
}

// NewHandlers exists so wire can assemble Handlers.
func NewHandlers(authHandler *auth.Handler, userHandler *user.Handler, listingHandler *listing.Handler, uploadHandler *filestorage.Handler) Handlers {
	return Handlers{Auth: authHandler, User: userHandler, Listing: listingHandler, Upload: uploadHandler}
}

// NewRouter builds the Gin engine with global middleware and every route.
func NewRouter(cfg *config.Config, logger *zap.Logger, resolver middleware.SessionResolver, handlers Handlers) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))

	// Credentials travel in a cookie, so origins must be listed explicitly.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}
	router.Use(cors.New(corsConfig))

	router.NoRoute(middleware.NoRoute)

	authMW := middleware.AuthMiddleware(resolver, cfg, logger.Named("AuthMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	v1 := router.Group("/api/v1")
	handlers.Auth.RegisterRoutes(v1)
	handlers.User.RegisterRoutes(v1, authMW)
	handlers.Listing.RegisterRoutes(v1, authMW)
	if handlers.Upload != nil {
		handlers.Upload.RegisterRoutes(v1, authMW)
		router.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	return router
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authService auth.Service,
	handlers Handlers,
	orphanAuditJob *jobs.OrphanAuditJob,
) (*Server, error) {
	router := NewRouter(cfg, logger, authService, handlers)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		orphanAuditJob: orphanAuditJob,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.orphanAuditJob != nil {
		if err := s.orphanAuditJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start orphan audit job", zap.Error(err))
		}
	} else {
		s.logger.Info("Orphan audit job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.orphanAuditJob != nil {
		s.orphanAuditJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
