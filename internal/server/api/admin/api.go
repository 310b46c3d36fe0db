// Package admin implements the /api/admin HTTP handlers.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"inkpress/internal/server/api/response"
	"inkpress/internal/server/service"
	"inkpress/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API represents the admin API
type API struct {
	service *service.Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewAPI creates new API. timeout bounds every request that touches git.
func NewAPI(svc *service.Service, timeout time.Duration, logger *zap.Logger) *API {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &API{
		service: svc,
		timeout: timeout,
		logger:  logger.Named("api"),
	}
}

// RegisterRoutes registers API routes
func (api *API) RegisterRoutes(r *gin.RouterGroup) {
	homepage := r.Group("/homepage")
	{
		homepage.GET("/config", api.getHomepageConfig)
		homepage.POST("/config", api.saveHomepageConfig)
	}

	r.GET("/settings", api.getSettings)
	r.POST("/settings", api.saveSettings)

	posts := r.Group("/posts")
	{
		posts.GET("", api.listPosts)
		posts.GET("/:slug/content", api.getPostContent)
		posts.PUT("/:slug/content", api.savePostContent)
		posts.GET("/:slug/preview", api.previewPost)
	}

	deploy := r.Group("/deploy")
	{
		deploy.POST("/batch", api.batchDeploy)
		deploy.GET("/history", api.deployHistory)
	}

	r.GET("/health", api.healthCheck)
}

func (api *API) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), api.timeout)
}

// fail maps service errors to status codes
func (api *API) fail(resp *response.Handler, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput),
		errors.Is(err, types.ErrNoChanges),
		errors.Is(err, types.ErrInvalidCategory),
		errors.Is(err, types.ErrPayloadMismatch):
		resp.BadRequest(err)
	case errors.Is(err, types.ErrNotFound):
		resp.NotFound(err)
	case errors.Is(err, types.ErrBusy):
		resp.Conflict(err)
	case errors.Is(err, context.DeadlineExceeded):
		resp.Error(http.StatusGatewayTimeout, errors.New("request timeout"))
	default:
		resp.InternalError(err)
	}
}

// healthCheck handles health check requests
func (api *API) healthCheck(c *gin.Context) {
	resp := response.New(c, api.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := api.service.HealthCheck(ctx)
	if !status.Healthy {
		resp.Custom(http.StatusServiceUnavailable, status)
		return
	}
	resp.Success(status)
}
