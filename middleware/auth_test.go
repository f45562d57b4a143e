package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmconnect/models"
	"farmconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct {
	claims *utils.Claims
	scopes []string
}

func (s *stubAuth) Authenticate(_ context.Context, token string, scopes ...string) (*utils.Claims, error) {
	s.scopes = scopes
	if token != "good" {
		return nil, models.ErrAuthentication
	}
	return s.claims, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id")+"/"+c.GetString("user_role"))
	})...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	auth := &stubAuth{claims: &utils.Claims{UserID: "u1", Role: "seller"}}
	r := newEngine(AuthMiddleware(auth))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"good token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := serve(r, "Bearer good")
	assert.Equal(t, "u1/seller", w.Body.String())
	assert.Equal(t, []string{utils.ScopeSession}, auth.scopes)
}

func TestRequireRole(t *testing.T) {
	auth := &stubAuth{claims: &utils.Claims{UserID: "u1", Role: "buyer"}}

	w := serve(newEngine(AuthMiddleware(auth), RequireRole(models.RoleSeller)), "Bearer good")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newEngine(AuthMiddleware(auth), RequireRole(models.RoleBuyer)), "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newEngine(RequireRole(models.RoleBuyer)), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID(), RequestLogger(zerolog.Nop()))

	w := serve(r, "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestClaimsWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, Claims(c))
}
