package verification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/secureverify/internal/access"
	"github.com/richxcame/secureverify/internal/intake"
	"github.com/richxcame/secureverify/internal/sessionstore"
	"github.com/richxcame/secureverify/pkg/config"
	"github.com/richxcame/secureverify/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "verification-handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// ========================================
// TEST HELPERS
// ========================================

type testServer struct {
	router  *gin.Engine
	service *Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	svc := newTestService(sessionstore.NewMemoryStore("", 0), &recordingPublisher{})
	h := NewHandler(svc, access.NewAuthorizer(), intake.NewFileRules(config.VerificationConfig{}))
	h.now = func() time.Time { return fixedNow }

	router := gin.New()
	h.RegisterRoutes(router, testJWTSecret)
	return &testServer{router: router, service: svc}
}

func tokenFor(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testJWTSecret, userID, "someone@example.com", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func statusData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	data, ok := parseResponse(t, w)["data"].(map[string]interface{})
	require.True(t, ok, "response has no data: %s", w.Body.String())
	return data
}

func currentStep(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	record := statusData(t, w)["record"].(map[string]interface{})
	return record["currentStep"].(string)
}

func personalInfoBody() gin.H {
	return gin.H{
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"email":      "ada@example.com",
		"dob":        "1990-01-15",
		"phone":      "555-123-4567",
		"address":    "12 Analytical Engine Road",
		"city":       "London",
		"country":    "GB",
		"postalCode": "N1 9GU",
		"idType":     "passport",
		"idNumber":   "X1234567",
	}
}

func documentBody() gin.H {
	return gin.H{"documentType": "passport", "name": "passport.png", "type": "image/png", "size": 2048}
}

func (s *testServer) completeWizard(t *testing.T, auth string) {
	t.Helper()
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/verification/personal-info", auth, personalInfoBody()).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/verification/documents", auth, documentBody()).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/verification/biometric", auth, nil).Code)
}

// ========================================
// TESTS: user endpoints
// ========================================

func TestHandler_RequiresAuth(t *testing.T) {
	srv := setupTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/verification", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GetStatus_Fresh(t *testing.T) {
	srv := setupTestServer(t)
	auth := tokenFor(t, uuid.New(), "user")

	w := srv.do(t, http.MethodGet, "/api/v1/verification", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := statusData(t, w)
	assert.Equal(t, float64(0), data["progress"])
	assert.Equal(t, "personal_info", data["nextStep"])
	assert.Equal(t, "unverified", currentStep(t, w))
}

func TestHandler_Wizard(t *testing.T) {
	srv := setupTestServer(t)
	auth := tokenFor(t, uuid.New(), "user")

	w := srv.do(t, http.MethodPost, "/api/v1/verification/personal-info", auth, personalInfoBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "document_upload", currentStep(t, w))
	assert.Equal(t, float64(33), statusData(t, w)["progress"])

	w = srv.do(t, http.MethodPost, "/api/v1/verification/documents", auth, documentBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "biometric_verification", currentStep(t, w))

	w = srv.do(t, http.MethodPost, "/api/v1/verification/biometric", auth, gin.H{"livenessVerified": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "under_review", currentStep(t, w))

	data := statusData(t, w)
	assert.Equal(t, float64(100), data["progress"])
	assert.Nil(t, data["nextStep"])

	record := data["record"].(map[string]interface{})
	assert.Contains(t, record["verificationId"], "VID")
	biometric := record["biometric"].(map[string]interface{})
	assert.Equal(t, false, biometric["livenessVerified"])
}

func TestHandler_SubmitPersonalInfo_ValidationErrors(t *testing.T) {
	srv := setupTestServer(t)
	auth := tokenFor(t, uuid.New(), "user")

	body := personalInfoBody()
	body["phone"] = "12"
	body["dob"] = time.Now().AddDate(-12, 0, 0).Format("2006-01-02")

	w := srv.do(t, http.MethodPost, "/api/v1/verification/personal-info", auth, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	details := parseResponse(t, w)["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "phone")
	assert.Contains(t, details, "dob")

	w = srv.do(t, http.MethodGet, "/api/v1/verification", auth, nil)
	assert.Equal(t, "unverified", currentStep(t, w))
}

func TestHandler_SubmitDocument_FileRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b gin.H)
		field  string
	}{
		{name: "bad mime", mutate: func(b gin.H) { b["type"] = "image/gif" }, field: "type"},
		{name: "too large", mutate: func(b gin.H) { b["size"] = 11 * 1024 * 1024 }, field: "size"},
		{name: "unknown document type", mutate: func(b gin.H) { b["documentType"] = "libraryCard" }, field: "documentType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupTestServer(t)
			auth := tokenFor(t, uuid.New(), "user")

			body := documentBody()
			tt.mutate(body)
			w := srv.do(t, http.MethodPost, "/api/v1/verification/documents", auth, body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			details := parseResponse(t, w)["error"].(map[string]interface{})["details"].(map[string]interface{})
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestHandler_Reset(t *testing.T) {
	srv := setupTestServer(t)
	auth := tokenFor(t, uuid.New(), "user")
	srv.completeWizard(t, auth)

	w := srv.do(t, http.MethodPost, "/api/v1/verification/reset", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unverified", currentStep(t, w))
	assert.Equal(t, float64(0), statusData(t, w)["progress"])
}

// ========================================
// TESTS: admin endpoints
// ========================================

func TestHandler_AdminRoutesRejectUsers(t *testing.T) {
	srv := setupTestServer(t)
	userID := uuid.New()
	auth := tokenFor(t, userID, "user")
	srv.completeWizard(t, auth)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/admin/verifications"},
		{http.MethodGet, "/api/v1/admin/verifications/" + userID.String()},
		{http.MethodPost, "/api/v1/admin/verifications/" + userID.String() + "/approve"},
		{http.MethodPost, "/api/v1/admin/verifications/" + userID.String() + "/reject"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := srv.do(t, p.method, p.path, auth, gin.H{"reason": "nope"})
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}

	w := srv.do(t, http.MethodGet, "/api/v1/verification", auth, nil)
	assert.Equal(t, "under_review", currentStep(t, w))
}

func TestHandler_AdminApprove(t *testing.T) {
	srv := setupTestServer(t)
	userID := uuid.New()
	srv.completeWizard(t, tokenFor(t, userID, "user"))
	adminAuth := tokenFor(t, uuid.New(), "admin")

	w := srv.do(t, http.MethodPost, "/api/v1/admin/verifications/"+userID.String()+"/approve", adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "verified", currentStep(t, w))

	record := statusData(t, w)["record"].(map[string]interface{})
	assert.Equal(t, "approved", record["reviewStatus"])
}

func TestHandler_AdminReject(t *testing.T) {
	srv := setupTestServer(t)
	userID := uuid.New()
	srv.completeWizard(t, tokenFor(t, userID, "user"))
	adminAuth := tokenFor(t, uuid.New(), "admin")
	path := "/api/v1/admin/verifications/" + userID.String() + "/reject"

	w := srv.do(t, http.MethodPost, path, adminAuth, gin.H{"reason": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, path, adminAuth, gin.H{"reason": "Document expired"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", currentStep(t, w))

	data := statusData(t, w)
	assert.Equal(t, "personal_info", data["nextStep"])
	assert.Equal(t, "Document expired", data["record"].(map[string]interface{})["rejectionReason"])
}

func TestHandler_AdminErrors(t *testing.T) {
	srv := setupTestServer(t)
	adminAuth := tokenFor(t, uuid.New(), "admin")

	w := srv.do(t, http.MethodGet, "/api/v1/admin/verifications/not-a-uuid", adminAuth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/verifications/"+uuid.New().String(), adminAuth, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/verifications/"+uuid.New().String()+"/approve", adminAuth, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/verifications?status=pending", adminAuth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AdminList(t *testing.T) {
	srv := setupTestServer(t)
	adminAuth := tokenFor(t, uuid.New(), "admin")

	reviewed := uuid.New()
	srv.completeWizard(t, tokenFor(t, reviewed, "user"))
	started := uuid.New()
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/v1/verification/personal-info",
		tokenFor(t, started, "user"), personalInfoBody()).Code)

	w := srv.do(t, http.MethodGet, "/api/v1/admin/verifications", adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	list := response["data"].(map[string]interface{})["verifications"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, started.String(), list[0].(map[string]interface{})["userId"])

	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])

	w = srv.do(t, http.MethodGet, "/api/v1/admin/verifications?status=under_review&limit=10", adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = parseResponse(t, w)["data"].(map[string]interface{})["verifications"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, reviewed.String(), list[0].(map[string]interface{})["userId"])

	w = srv.do(t, http.MethodGet, "/api/v1/admin/verifications/"+reviewed.String(), adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "under_review", currentStep(t, w))
}
