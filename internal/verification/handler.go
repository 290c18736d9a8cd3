package verification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/secureverify/internal/access"
	"github.com/richxcame/secureverify/internal/intake"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/middleware"
	"github.com/richxcame/secureverify/pkg/pagination"
)

// Handler handles HTTP requests for the onboarding wizard and admin review
type Handler struct {
	service    *Service
	authorizer *access.Authorizer
	files      intake.FileRules
	now        func() time.Time
}

// NewHandler creates a new verification handler
func NewHandler(service *Service, authorizer *access.Authorizer, files intake.FileRules) *Handler {
	return &Handler{
		service:    service,
		authorizer: authorizer,
		files:      files,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ========================================
// USER ENDPOINTS
// ========================================

// GetStatus returns the caller's verification record, progress and next step
// GET /api/v1/verification
func (h *Handler) GetStatus(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "failed to get verification status")
		return
	}

	common.SuccessResponse(c, status)
}

// SubmitPersonalInfo accepts the personal details step
// POST /api/v1/verification/personal-info
func (h *Handler) SubmitPersonalInfo(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req intake.PersonalInfoRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	status, err := h.service.SubmitPersonalInfo(c.Request.Context(), userID, personalInfoFromRequest(&req))
	if err != nil {
		h.respondError(c, err, "failed to submit personal information")
		return
	}

	common.SuccessResponse(c, status)
}

// SubmitDocument accepts the metadata of an identity document
// POST /api/v1/verification/documents
func (h *Handler) SubmitDocument(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req intake.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithValidationError(c, err)
		return
	}
	if err := h.files.ValidateDocument(&req); err != nil {
		middleware.RespondWithValidationError(c, err)
		return
	}

	upload := DocumentUpload{
		Name:       req.Name,
		Type:       req.Type,
		Size:       req.Size,
		UploadDate: h.now(),
	}
	if req.UploadDate != nil {
		upload.UploadDate = req.UploadDate.UTC()
	}

	status, err := h.service.SubmitDocument(c.Request.Context(), userID, DocumentType(req.DocumentType), upload)
	if err != nil {
		h.respondError(c, err, "failed to submit document")
		return
	}

	common.SuccessResponse(c, status)
}

// SubmitBiometric accepts the selfie capture and sends the record to review
// POST /api/v1/verification/biometric
func (h *Handler) SubmitBiometric(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req intake.BiometricRequest
	if c.Request.ContentLength != 0 {
		if !middleware.ValidateAndBind(c, &req) {
			return
		}
	}

	capture := BiometricCapture{CaptureDate: h.now()}
	if req.CaptureDate != nil {
		capture.CaptureDate = req.CaptureDate.UTC()
	}

	status, err := h.service.SubmitBiometric(c.Request.Context(), userID, capture, req.Liveness())
	if err != nil {
		h.respondError(c, err, "failed to submit biometric capture")
		return
	}

	common.SuccessResponse(c, status)
}

// Reset discards the caller's progress
// POST /api/v1/verification/reset
func (h *Handler) Reset(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.service.Reset(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "failed to reset verification")
		return
	}

	common.SuccessResponse(c, status)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListVerifications lists started verifications, newest update first
// GET /api/v1/admin/verifications?status=under_review&limit=20&offset=0
func (h *Handler) ListVerifications(c *gin.Context) {
	if _, ok := h.grantAdmin(c); !ok {
		return
	}

	params := pagination.ParseParams(c)
	filter := ListFilter{
		Step:   Step(c.Query("status")),
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	records, total, err := h.service.ListVerifications(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "failed to list verifications")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"verifications": records}, meta)
}

// GetVerification returns one user's record for review
// GET /api/v1/admin/verifications/:user_id
func (h *Handler) GetVerification(c *gin.Context) {
	if _, ok := h.grantAdmin(c); !ok {
		return
	}

	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	status, err := h.service.GetVerification(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "failed to get verification")
		return
	}

	common.SuccessResponse(c, status)
}

// Approve marks a user's verification as verified
// POST /api/v1/admin/verifications/:user_id/approve
func (h *Handler) Approve(c *gin.Context) {
	capability, ok := h.grantAdmin(c)
	if !ok {
		return
	}

	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	status, err := h.service.Approve(c.Request.Context(), capability, userID)
	if err != nil {
		h.respondError(c, err, "failed to approve verification")
		return
	}

	common.SuccessResponse(c, status)
}

// Reject marks a user's verification as rejected with a reason
// POST /api/v1/admin/verifications/:user_id/reject
func (h *Handler) Reject(c *gin.Context) {
	capability, ok := h.grantAdmin(c)
	if !ok {
		return
	}

	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req intake.RejectRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	status, err := h.service.Reject(c.Request.Context(), capability, userID, req.Reason)
	if err != nil {
		h.respondError(c, err, "failed to reject verification")
		return
	}

	common.SuccessResponse(c, status)
}

// ========================================
// HELPERS
// ========================================

// grantAdmin writes the error response itself when the caller is not an admin
func (h *Handler) grantAdmin(c *gin.Context) (*access.AdminCapability, bool) {
	identity, err := access.IdentityFromContext(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	capability, err := h.authorizer.GrantAdmin(identity)
	if err != nil {
		common.ErrorResponse(c, http.StatusForbidden, "admin access required")
		return nil, false
	}
	return capability, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := err.(*common.AppError); ok {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}

func personalInfoFromRequest(req *intake.PersonalInfoRequest) PersonalInfo {
	return PersonalInfo{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		DOB:        req.DOB,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		IDType:     req.IDType,
		IDNumber:   req.IDNumber,
	}
}

// ========================================
// ROUTE REGISTRATION
// ========================================

// RegisterRoutes registers verification routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	user := r.Group("/api/v1/verification")
	user.Use(middleware.AuthMiddleware(jwtSecret))
	{
		user.GET("", h.GetStatus)
		user.POST("/personal-info", h.SubmitPersonalInfo)
		user.POST("/documents", h.SubmitDocument)
		user.POST("/biometric", h.SubmitBiometric)
		user.POST("/reset", h.Reset)
	}

	admin := r.Group("/api/v1/admin/verifications")
	admin.Use(middleware.AuthMiddleware(jwtSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", h.ListVerifications)
		admin.GET("/:user_id", h.GetVerification)
		admin.POST("/:user_id/approve", h.Approve)
		admin.POST("/:user_id/reject", h.Reject)
	}
}
