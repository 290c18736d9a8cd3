package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "notifications-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// ============================================================================
// Helpers
// ============================================================================

func setupRouter(svc *Service) *gin.Engine {
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router, testJWTSecret)
	return router
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testJWTSecret, userID, "someone@example.com", "user", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// ============================================================================
// Tests
// ============================================================================

func TestHandler_GetNotifications(t *testing.T) {
	svc := NewService(10)
	userID := uuid.New()
	svc.Notify(context.Background(), userID, "approved", approvedTitle, approvedBody)
	svc.Notify(context.Background(), uuid.New(), "approved", approvedTitle, approvedBody)
	router := setupRouter(svc)

	tests := []struct {
		name      string
		language  string
		wantTitle string
	}{
		{name: "default english", language: "", wantTitle: "Identity Verified"},
		{name: "russian", language: "ru-RU,ru;q=0.9,en;q=0.8", wantTitle: "Личность подтверждена"},
		{name: "turkmen", language: "tk", wantTitle: "Şahsyýet Tassyklandy"},
		{name: "unsupported falls back", language: "ja", wantTitle: "Identity Verified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
			req.Header.Set("Authorization", bearer(t, userID))
			if tt.language != "" {
				req.Header.Set("Accept-Language", tt.language)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			response := parseResponse(t, w)
			list := response["data"].(map[string]interface{})["notifications"].([]interface{})
			require.Len(t, list, 1)
			assert.Equal(t, tt.wantTitle, list[0].(map[string]interface{})["title"])
			assert.Equal(t, float64(1), response["meta"].(map[string]interface{})["total"])
		})
	}
}

func TestHandler_MarkAsReadAndCount(t *testing.T) {
	svc := NewService(10)
	userID := uuid.New()
	id := svc.Notify(context.Background(), userID, "approved", approvedTitle, approvedBody)
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id.String()+"/read", nil)
	req.Header.Set("Authorization", bearer(t, userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread/count", nil)
	req.Header.Set("Authorization", bearer(t, userID))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), parseResponse(t, w)["data"].(map[string]interface{})["count"])

	req = httptest.NewRequest(http.MethodPost, "/api/v1/notifications/not-a-uuid/read", nil)
	req.Header.Set("Authorization", bearer(t, userID))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.New().String()+"/read", nil)
	req.Header.Set("Authorization", bearer(t, userID))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_RequiresAuth(t *testing.T) {
	router := setupRouter(NewService(10))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
