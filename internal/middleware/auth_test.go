package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hogar/internal/models"
)

const testSecret = "test-secret"

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	r.POST("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func signed(t *testing.T, key string, ttl time.Duration) string {
	t.Helper()
	user := &models.User{Base: models.Base{ID: "0190f7a2-0000-7000-8000-000000000001"}, Email: "a@test.com"}
	token, err := SignToken(user, []byte(key), ttl)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	valid := signed(t, testSecret, time.Hour)

	tests := []struct {
		name       string
		method     string
		target     string
		header     string
		wantStatus int
	}{
		{"valid_bearer", http.MethodGet, "/me", "Bearer " + valid, http.StatusOK},
		{"missing_header", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"wrong_scheme", http.MethodGet, "/me", "Token " + valid, http.StatusUnauthorized},
		{"wrong_key", http.MethodGet, "/me", "Bearer " + signed(t, "other", time.Hour), http.StatusUnauthorized},
		{"expired", http.MethodGet, "/me", "Bearer " + signed(t, testSecret, -time.Minute), http.StatusUnauthorized},
		{"query_token_on_get", http.MethodGet, "/me?access_token=" + valid, "", http.StatusOK},
		{"query_token_ignored_on_post", http.MethodPost, "/me?access_token=" + valid, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			setupAuthRouter().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := parseBody(t, rec)
			if tt.wantStatus == http.StatusOK {
				if body["user_id"] != "0190f7a2-0000-7000-8000-000000000001" {
					t.Errorf("unexpected user_id %v", body["user_id"])
				}
				return
			}
			errObj, ok := body["error"].(map[string]interface{})
			if !ok || errObj["code"] != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED error, got %v", body)
			}
		})
	}
}
