package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prabhdip/recipebox/internal/http/middlewares"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
		},
	})
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message)
}

// RespondUnprocessable carries field validation failures as a plain list of
// human readable messages, the shape clients render under forms.
func RespondUnprocessable(ctx *gin.Context, messages []string) {
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{
		"errors": messages,
	})
}
