package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every JSON endpoint returns.
// Data, Count and Stats are omitted only when unset; empty lists are still written.
type APIResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Stats     any    `json:"stats,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Error     any    `json:"error,omitempty"`
}

type Option func(*APIResponse)

func WithCount(n int) Option {
	return func(r *APIResponse) { r.Count = &n }
}

func WithStats(stats any) Option {
	return func(r *APIResponse) { r.Stats = stats }
}

// Success writes a success envelope.
func Success(ctx *gin.Context, status int, data any, message string, opts ...Option) {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
	}
	for _, opt := range opts {
		opt(&resp)
	}
	ctx.JSON(status, resp)
}

// Error writes a failure envelope and aborts the handler chain.
func Error(ctx *gin.Context, status int, message string, err any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, Failure(ctx, message, err))
}

// Failure builds a failure envelope without writing it.
func Failure(ctx *gin.Context, message string, err any) APIResponse {
	if m, ok := err.(map[string]string); ok && len(m) == 0 {
		err = nil
	}
	return APIResponse{
		Success:   false,
		Message:   message,
		RequestID: ctx.GetString("request_id"),
		Error:     err,
	}
}
