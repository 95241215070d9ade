package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func newRouter(cfg *config.Config, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthMiddleware(cfg), RoleMiddleware(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", util.GetUserFromContext(c).UserID)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret"}}
	r := newRouter(cfg, model.Teacher)

	token := func(role model.UserRole) string {
		u := &model.User{Role: role}
		u.ID = 3
		tok, err := util.GenerateJWT(u, cfg.JWT.Secret, time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT: %v", err)
		}
		return tok
	}

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized},
		{"teacher header", "Bearer " + token(model.Teacher), "", http.StatusOK},
		{"teacher query", "", token(model.Teacher), http.StatusOK},
		{"student forbidden", "Bearer " + token(model.Student), "", http.StatusForbidden},
		{"admin allowed", "Bearer " + token(model.Admin), "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/x"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status %d, want %d", w.Code, tt.want)
			}
			if w.Code == http.StatusOK && w.Body.String() != "3" {
				t.Errorf("user id = %q", w.Body.String())
			}
		})
	}
}
