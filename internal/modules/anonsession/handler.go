// Package anonsession mints anonymous session identifiers for visitors
// without an account. The identifier is echoed back by clients in the
// X-Session-Id header and scopes their study guide library.
package anonsession

import (
	"time"

	"github.com/berea-app/core/internal/config"
	"github.com/berea-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	retention time.Duration
}

func NewHandler(cfg config.GuideConfig) *Handler {
	return &Handler{retention: cfg.RetentionWindow()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions/anonymous", h.create)
}

func (h *Handler) create(c *gin.Context) {
	response.Created(c, gin.H{
		"session_id":      uuid.NewString(),
		"retention_hours": int(h.retention / time.Hour),
	})
}
