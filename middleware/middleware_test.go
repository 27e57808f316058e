package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursegen/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionEcho(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		s := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"uid": s.UserID, "role": s.Role, "trace": s.TraceID, "key": s.UserAPIKey})
	})
	return r
}

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestAuthWithSecret(t *testing.T) {
	r := sessionEcho(Auth("s3cret"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, "s3cret", Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}))
	req.Header.Set(HeaderAPIKey, "own-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"user-1"`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.Contains(t, w.Body.String(), `"key":"own-key"`)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestAuthRejectsBadTokens(t *testing.T) {
	r := sessionEcho(Auth("s3cret"))
	expired := sign(t, "s3cret", Claims{UID: "u", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}})
	wrongKey := sign(t, "other", Claims{UID: "u"})
	noUser := sign(t, "s3cret", Claims{})

	for _, tok := range []string{expired, wrongKey, noUser, "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthWithoutSecretTrustsHeader(t *testing.T) {
	r := sessionEcho(Auth(""))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderUserID, "local-user")
	req.Header.Set(HeaderRequestID, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"uid":"local-user"`)
	assert.Contains(t, w.Body.String(), `"trace":"trace-1"`)
}

func TestRequireAdmin(t *testing.T) {
	r := sessionEcho(Auth(""), RequireAdmin())
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req.Header.Set("X-User-Role", "admin")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rl := NewRateLimiter(client, logger.NewNop())
	r := sessionEcho(Auth(""), rl.Limit("ai", 2, time.Minute))

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(HeaderUserID, user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	assert.Equal(t, http.StatusOK, do("b"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, do("a"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	r := sessionEcho(Auth(""), NewRateLimiter(client, logger.NewNop()).Limit("ai", 1, time.Minute))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

