package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func signToken(t *testing.T, role, tokenType string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":    uuid.NewString(),
		"username":   "tester",
		"role":       role,
		"company_id": uuid.NewString(),
		"token_type": tokenType,
		"exp":        time.Now().Add(dur).Unix(),
		"iat":        time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "role": claims.Role})
	})
	r.GET("/admin", RequireRole("ADMIN", "SUPERADMIN"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── JWT ───────────────────────────────────────────────────────────────────────

func TestJWTAuth(t *testing.T) {
	r := testRouter()

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "not.a.token", http.StatusUnauthorized},
		{"expired", signToken(t, "SELLER", "access", -time.Second), http.StatusUnauthorized},
		{"refresh token", signToken(t, "SELLER", "refresh", time.Hour), http.StatusUnauthorized},
		{"valid", signToken(t, "SELLER", "access", time.Hour), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, get(r, "/protected", tc.token).Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := testRouter()

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", signToken(t, "SELLER", "access", time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/admin", signToken(t, "ADMIN", "access", time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/admin", signToken(t, "SUPERADMIN", "access", time.Hour)).Code)
}

func TestRequestID(t *testing.T) {
	r := testRouter()

	w := get(r, "/protected", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

// ── Rate limiter ──────────────────────────────────────────────────────────────

func TestIPLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l := NewIPLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.False(t, ok)

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "limits are per IP")

	now = now.Add(61 * time.Second)
	assert.Equal(t, 2, l.Purge())
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiter_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(NewIPLimiter(1, time.Minute)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/ping", "").Code)
	w := get(r, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())
}
