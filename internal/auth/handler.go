package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/secureverify/internal/intake"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/middleware"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req intake.RegisterRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	response, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "registration failed")
		return
	}

	common.CreatedResponse(c, response)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req intake.LoginRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	response, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "login failed")
		return
	}

	common.SuccessResponse(c, response)
}

// Me returns the caller's account. Tokens outlive the in-memory account
// table, so a missing account is answered from the token claims.
// GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		appErr, ok := err.(*common.AppError)
		if !ok || appErr.Code != http.StatusNotFound {
			common.ErrorResponse(c, http.StatusInternalServerError, "failed to get profile")
			return
		}
		role, _ := middleware.GetUserRole(c)
		user = &User{ID: userID, Email: middleware.GetUserEmail(c), Role: role}
	}

	common.SuccessResponse(c, user)
}

// RegisterRoutes registers auth routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/me", middleware.AuthMiddleware(jwtSecret), h.Me)
	}
}
