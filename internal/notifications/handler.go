package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/i18n"
	"github.com/richxcame/secureverify/pkg/middleware"
	"github.com/richxcame/secureverify/pkg/pagination"
)

// Handler handles HTTP requests for the notification inbox
type Handler struct {
	service *Service
}

// NewHandler creates a new notifications handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications returns the caller's inbox in the language of Accept-Language
// GET /api/v1/notifications?limit=20&offset=0
func (h *Handler) GetNotifications(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	lang := i18n.FromAcceptLanguage(c.GetHeader("Accept-Language"))

	notifications, total, err := h.service.GetUserNotifications(c.Request.Context(), userID, lang, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get notifications")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"notifications": notifications}, meta)
}

// GetUnreadCount returns how many inbox entries are unread
// GET /api/v1/notifications/unread/count
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.service.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get unread count")
		return
	}

	common.SuccessResponse(c, gin.H{"count": count})
}

// MarkAsRead marks one of the caller's notifications as read
// POST /api/v1/notifications/:id/read
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), userID, notificationID); err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to mark notification as read")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "notification marked as read"})
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1/notifications")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.GET("", h.GetNotifications)
		api.GET("/unread/count", h.GetUnreadCount)
		api.POST("/:id/read", h.MarkAsRead)
	}
}
