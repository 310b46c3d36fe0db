package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Result is the body of mutating calls
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed call
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler provides methods for standard API responses
type Handler struct {
	ctx    *gin.Context
	logger *zap.Logger
}

// New creates new response handler
func New(c *gin.Context, logger *zap.Logger) *Handler {
	return &Handler{
		ctx:    c,
		logger: logger,
	}
}

// Success sends body with status 200
func (h *Handler) Success(body any) {
	h.ctx.JSON(http.StatusOK, body)
}

// OK sends a {success, message} body
func (h *Handler) OK(message string) {
	h.ctx.JSON(http.StatusOK, Result{Success: true, Message: message})
}

// Error sends an error response
func (h *Handler) Error(status int, err error) {
	requestID := h.ctx.GetString("request_id")
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err))
	}
	_ = h.ctx.Error(err)

	h.ctx.JSON(status, ErrorResponse{
		Success:   false,
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

// BadRequest sends bad request error response
func (h *Handler) BadRequest(err error) {
	h.Error(http.StatusBadRequest, err)
}

// NotFound sends not found error response
func (h *Handler) NotFound(err error) {
	h.Error(http.StatusNotFound, err)
}

// Conflict sends conflict error response
func (h *Handler) Conflict(err error) {
	h.Error(http.StatusConflict, err)
}

// InternalError sends an internal server error response
func (h *Handler) InternalError(err error) {
	h.Error(http.StatusInternalServerError, err)
}

// Custom sends custom response
func (h *Handler) Custom(status int, body any) {
	h.ctx.JSON(status, body)
}
