// Package server exposes the price-discovery pipeline over HTTP: a small
// JSON API with token sessions, a consulta role for searching and an admin
// role for catalog and user management.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/catalog"
	"medbuscador/internal/search"
	"medbuscador/internal/storage"
)

type Server struct {
	logger   *zap.Logger
	svc      *search.Service
	store    *storage.Store
	base     catalog.Repository
	extra    catalog.Repository
	profiles []internal.Profile
	sessions *sessionStore
	engine   *gin.Engine
}

type Options struct {
	Service    *search.Service
	Store      *storage.Store
	Base       catalog.Repository
	Extra      catalog.Repository
	Profiles   []internal.Profile
	SessionTTL time.Duration
}

func New(logger *zap.Logger, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 8 * time.Hour
	}
	s := &Server{
		logger:   logger,
		svc:      opts.Service,
		store:    opts.Store,
		base:     opts.Base,
		extra:    opts.Extra,
		profiles: opts.Profiles,
		sessions: newSessionStore(opts.SessionTTL),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	engine.POST("/api/login", s.handleLogin)
	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := engine.Group("/api", s.requireAuth)
	{
		authed.POST("/logout", s.handleLogout)
		authed.GET("/me", s.handleMe)
		authed.GET("/pharmacies", s.handlePharmacies)
		authed.POST("/search", s.handleSearch)
		authed.GET("/catalog", s.handleCatalog)
		authed.GET("/export", s.handleExport)
	}

	admin := engine.Group("/api/admin", s.requireAuth, s.requireAdmin)
	{
		admin.POST("/upload/base", s.handleUploadBase)
		admin.POST("/upload/extra", s.handleUploadExtra)
		admin.GET("/rows", s.handleListRows)
		admin.POST("/rows", s.handleAddRow)
		admin.PUT("/rows/:index", s.handleUpdateRow)
		admin.DELETE("/rows/:index", s.handleDeleteRow)
		admin.GET("/users", s.handleListUsers)
		admin.POST("/users", s.handleCreateUser)
		admin.PUT("/users/:username/password", s.handleUpdatePassword)
		admin.DELETE("/users/:username", s.handleDeleteUser)
		admin.GET("/runs", s.handleRuns)
	}

	s.engine = engine
	return s
}

// Handler exposes the router for tests and custom http.Server setups.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Run(addr string) error {
	s.logger.Info("server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}
