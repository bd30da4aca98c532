package account

import (
	"errors"

	"github.com/berea-app/core/internal/middleware"
	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	auth := rg.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/logout", middleware.Auth(db), h.logout)
	auth.GET("/me", middleware.Auth(db), h.me)
}

func (h *Handler) register(c *gin.Context) {
	var dto registerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.svc.Register(dto.Email, dto.Name, dto.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, "this email is already registered")
			return
		}
		response.InternalError(c, err)
		return
	}

	token, _, err := h.svc.Login(dto.Email, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Created(c, authResponse{Token: token, User: toProfile(user)})
}

func (h *Handler) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, user, err := h.svc.Login(dto.Email, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	response.OK(c, authResponse{Token: token, User: toProfile(user)})
}

func (h *Handler) logout(c *gin.Context) {
	err := h.svc.Logout(middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	var user models.UserModel
	if err := h.svc.db.First(&user, "id = ?", middleware.CurrentUserID(c)).Error; err != nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toProfile(&user))
}

func toProfile(u *models.UserModel) userProfile {
	return userProfile{ID: u.ID, Email: u.Email, Name: u.Name}
}
