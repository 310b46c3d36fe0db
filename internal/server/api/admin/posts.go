package admin

import (
	"errors"
	"fmt"

	"inkpress/internal/server/api/response"
	"inkpress/internal/types"

	"github.com/gin-gonic/gin"
)

type contentRequest struct {
	Content *string `json:"content"`
}

func (api *API) listPosts(c *gin.Context) {
	resp := response.New(c, api.logger)

	posts, err := api.service.Posts()
	if err != nil {
		api.fail(resp, err)
		return
	}
	resp.Success(gin.H{"posts": posts})
}

func (api *API) getPostContent(c *gin.Context) {
	resp := response.New(c, api.logger)
	slug := c.Param("slug")

	body, err := api.service.PostContent(slug)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			resp.NotFound(fmt.Errorf("post %q not found", slug))
			return
		}
		api.fail(resp, err)
		return
	}
	resp.Success(gin.H{"content": body})
}

func (api *API) savePostContent(c *gin.Context) {
	resp := response.New(c, api.logger)
	slug := c.Param("slug")

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.Content == nil {
		resp.BadRequest(errors.New("content is required"))
		return
	}

	ctx, cancel := api.requestContext(c)
	defer cancel()

	if err := api.service.SavePostContent(ctx, slug, *req.Content); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			resp.NotFound(fmt.Errorf("post %q not found", slug))
			return
		}
		api.fail(resp, err)
		return
	}
	resp.OK("Post content saved successfully")
}

func (api *API) previewPost(c *gin.Context) {
	resp := response.New(c, api.logger)
	slug := c.Param("slug")

	html, err := api.service.PostPreview(slug)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			resp.NotFound(fmt.Errorf("post %q not found", slug))
			return
		}
		api.fail(resp, err)
		return
	}
	resp.Success(gin.H{"html": html})
}
