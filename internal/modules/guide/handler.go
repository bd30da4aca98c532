package guide

import (
	"errors"

	"github.com/berea-app/core/internal/middleware"
	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/modules/generation"
	"github.com/berea-app/core/internal/pkg/pagination"
	"github.com/berea-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, principalMW gin.HandlerFunc) {
	g := rg.Group("/study-guides", principalMW)

	g.POST("", h.generate)
	g.GET("", h.list)
	g.PATCH("/:id/saved", h.setSaved)
	g.DELETE("/:id", h.remove)
}

// POST /study-guides
func (h *Handler) generate(c *gin.Context) {
	var dto generateGuideDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, ok := resolvePrincipal(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	g, err := h.svc.GetOrGenerate(c.Request.Context(), p,
		models.GuideInputType(dto.InputType), dto.InputValue, dto.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, g)
}

// GET /study-guides?saved=true&page=1&size=20
func (h *Handler) list(c *gin.Context) {
	p, ok := resolvePrincipal(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	q := pagination.FromContext(c)
	items, total, err := h.svc.ListFor(c.Request.Context(), p, ListOptions{
		SavedOnly: c.Query("saved") == "true",
		Page:      q.Page,
		Size:      q.Size,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paged(c, items, q.Meta(total))
}

// PATCH /study-guides/:id/saved
func (h *Handler) setSaved(c *gin.Context) {
	var dto setSavedDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, ok := resolvePrincipal(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	entry, err := h.svc.SetSaved(c.Request.Context(), p, c.Param("id"), *dto.IsSaved)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, entry)
}

// DELETE /study-guides/:id
func (h *Handler) remove(c *gin.Context) {
	p, ok := resolvePrincipal(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	if err := h.svc.Unlink(c.Request.Context(), p, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var genErr *generation.Error
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, err.Error())
	case errors.As(err, &genErr):
		response.BadGateway(c, "study guide generation failed, please try again")
	default:
		response.InternalError(c, err)
	}
}

func resolvePrincipal(c *gin.Context) (Principal, bool) {
	if uid := middleware.CurrentUserID(c); uid != "" {
		return UserPrincipal(uid), true
	}
	if sid := middleware.CurrentAnonSessionID(c); sid != "" {
		return AnonymousPrincipal(sid), true
	}
	return Principal{}, false
}
