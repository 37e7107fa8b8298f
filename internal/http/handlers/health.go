package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	pingDB       func() error
	pingSessions func() error
}

func NewHealthHandler(pingDB, pingSessions func() error) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, pingSessions: pingSessions}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
			return
		}
	}

	if h.pingSessions != nil {
		if err := h.pingSessions(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "sessions_unavailable"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
