package admin

import (
	"errors"
	"fmt"

	"inkpress/internal/server/api/response"
	"inkpress/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type homepageRequest struct {
	Config *types.HomepageConfig `json:"config"`
}

type settingsRequest struct {
	Settings *types.SiteSettings `json:"settings"`
}

func (api *API) getHomepageConfig(c *gin.Context) {
	response.New(c, api.logger).Success(gin.H{"config": api.service.HomepageConfig()})
}

func (api *API) saveHomepageConfig(c *gin.Context) {
	resp := response.New(c, api.logger)

	var req homepageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.Config == nil {
		resp.BadRequest(errors.New("config is required"))
		return
	}

	ctx, cancel := api.requestContext(c)
	defer cancel()

	if err := api.service.SaveHomepageConfig(ctx, *req.Config); err != nil {
		api.fail(resp, err)
		return
	}

	api.logger.Info("Homepage configuration saved",
		zap.String("request_id", c.GetString("request_id")))
	resp.OK("Homepage configuration saved successfully")
}

func (api *API) getSettings(c *gin.Context) {
	response.New(c, api.logger).Success(gin.H{"settings": api.service.Settings()})
}

func (api *API) saveSettings(c *gin.Context) {
	resp := response.New(c, api.logger)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.Settings == nil {
		resp.BadRequest(errors.New("settings is required"))
		return
	}

	ctx, cancel := api.requestContext(c)
	defer cancel()

	if err := api.service.SaveSettings(ctx, *req.Settings); err != nil {
		api.fail(resp, err)
		return
	}
	resp.OK("Site settings saved successfully")
}
