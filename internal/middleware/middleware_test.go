package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newRouter(buf *bytes.Buffer, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), middleware.AuthMiddleware(testSecret))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("handled")
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid token", header: "Bearer " + signedToken(t, "acc-1", time.Hour), status: http.StatusOK, body: "acc-1"},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + signedToken(t, "acc-1", -time.Hour), status: http.StatusUnauthorized},
		{name: "empty subject", header: "Bearer " + signedToken(t, "", time.Hour), status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}

	assert.Contains(t, buf.String(), `"account_id":"acc-1"`)
}

func TestRateLimitPerAccount(t *testing.T) {
	lim, err := middleware.NewLimiter("2-M")
	require.NoError(t, err)

	var buf bytes.Buffer
	r := newRouter(&buf, middleware.RateLimit(lim))

	do := func(subject string) int {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, subject, time.Hour))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("acc-1"))
	assert.Equal(t, http.StatusOK, do("acc-1"))
	assert.Equal(t, http.StatusTooManyRequests, do("acc-1"))
	assert.Equal(t, http.StatusOK, do("acc-2"), "limits are tracked per account")

	_, err = middleware.NewLimiter("not-a-rate")
	assert.Error(t, err)
}
