package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	tokens *auth.TokenManager
}

func (v stubVerifier) Verify(_ context.Context, token string) (*auth.JWTClaims, error) {
	claims, err := v.tokens.ParseJWT(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return claims, nil
}

func newRouter(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(log), RequestLogger(log), ErrorHandler(log))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(zap.NewNop())
	protected := r.Group("/", Authenticate(stubVerifier{tokens: tokens}))
	protected.GET("/me", func(c *gin.Context) {
		claims, ok := Claims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "role": c.GetString(ContextRole)})
	})
	protected.GET("/admin", Authorize("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userToken, err := tokens.GenerateJWT("u1", "u@coffee.test", "user")
	require.NoError(t, err)
	adminToken, err := tokens.GenerateJWT("a1", "a@coffee.test", "admin")
	require.NoError(t, err)
	otherToken, err := auth.NewTokenManager("other", time.Hour).GenerateJWT("u1", "u@coffee.test", "user")
	require.NoError(t, err)

	cases := []struct {
		name    string
		path    string
		header  string
		status  int
		message string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, "Access denied. No token provided."},
		{"not bearer", "/me", "Token " + userToken, http.StatusUnauthorized, "Access denied. No token provided."},
		{"empty bearer", "/me", "Bearer ", http.StatusUnauthorized, "Access denied. No token provided."},
		{"bad signature", "/me", "Bearer " + otherToken, http.StatusForbidden, "Invalid or expired token."},
		{"valid", "/me", "Bearer " + userToken, http.StatusOK, ""},
		{"wrong role", "/admin", "Bearer " + userToken, http.StatusForbidden, apperror.ErrForbiddenRole.Message},
		{"admin", "/admin", "Bearer " + adminToken, http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.message != "" {
				body := decode(t, w)
				assert.Equal(t, "fail", body["status"])
				assert.Equal(t, tc.message, body["message"])
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core))
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.ErrShopNotFound) })
	r.GET("/wrapped", func(c *gin.Context) { _ = c.Error(errors.Join(errors.New("ctx"), apperror.ErrInvalidID)) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("mongo down")) })
	r.GET("/panic", func(c *gin.Context) { panic("oops") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "fail", "message": "Coffee Shop not found."}, decode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "error", "message": "Server side error"}, decode(t, w))
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server side error", decode(t, w)["message"])
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(HeaderRequestID))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("abc")
	assert.False(t, ok)
}
