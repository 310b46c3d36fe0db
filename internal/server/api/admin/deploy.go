package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkpress/internal/server/api/response"
	"inkpress/internal/types"
	"inkpress/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

func (api *API) batchDeploy(c *gin.Context) {
	resp := response.New(c, api.logger)

	var req types.DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "changes" {
			resp.BadRequest(types.ErrNoChanges)
			return
		}
		resp.BadRequest(fmt.Errorf("invalid request body: %v", err))
		return
	}

	ctx, cancel := api.requestContext(c)
	defer cancel()

	result, err := api.service.Deploy(ctx, req.Changes)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			api.logger.Info("Client canceled deploy request")
			return
		}
		api.fail(resp, err)
		return
	}

	if result.Warning != "" {
		api.logger.Warn("Deploy committed but not pushed",
			zap.String("deployment_id", result.DeploymentID),
			zap.String("warning", result.Warning))
	}
	resp.Success(result)
}

func (api *API) deployHistory(c *gin.Context) {
	resp := response.New(c, api.logger)

	limit := defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			resp.BadRequest(errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	var since time.Time
	if s := c.Query("since"); s != "" {
		t, err := utils.ParseTime(s)
		if err != nil {
			resp.BadRequest(fmt.Errorf("invalid since: %v", err))
			return
		}
		since = t
	}

	records, err := api.service.History(limit, since)
	if err != nil {
		api.fail(resp, err)
		return
	}
	resp.Success(gin.H{"deployments": records})
}
