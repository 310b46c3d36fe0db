package api

import (
	"errors"
	"net/http"

	"inkpress/internal/server/api/admin"
	"inkpress/internal/server/api/middleware"
	"inkpress/internal/server/api/response"
	"inkpress/internal/server/config"
	"inkpress/internal/server/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router handles all routing logic
type Router struct {
	engine *gin.Engine
	config *config.Config
	logger *zap.Logger
}

// NewRouter creates and configures a new router
func NewRouter(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Router {
	// Set gin mode based on config
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		config: cfg,
		logger: logger,
	}

	r.setupMiddleware()
	r.setupAdminAPI(svc)

	r.engine.NoRoute(func(c *gin.Context) {
		response.New(c, logger).NotFound(errors.New("route not found"))
	})

	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// setupMiddleware configures all middleware
func (r *Router) setupMiddleware() {
	m := middleware.New(r.config, r.logger)

	// Basic middleware
	r.engine.Use(m.RequestID())
	r.engine.Use(m.Logger())
	r.engine.Use(m.Recovery())

	// Security middleware
	r.engine.Use(m.Secure())

	// CORS if enabled
	if r.config.API.CORS.Enabled {
		r.engine.Use(m.Cors())
	}
}

// setupAdminAPI configures the admin routes. Responses are never cached
// since they reflect the working tree.
func (r *Router) setupAdminAPI(svc *service.Service) {
	api := admin.NewAPI(svc, r.config.Git.Timeout, r.logger)

	group := r.engine.Group("/api/admin")
	group.Use(middleware.New(r.config, r.logger).NoCache())

	api.RegisterRoutes(group)
}
