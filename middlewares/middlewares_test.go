package middlewares

import (
	"SalvadoDental/utils"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidateBearerToken(t *testing.T) {
	router := gin.New()
	router.Use(ValidateBearerToken("secret"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"wrong key", "Bearer secreto", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, serve(router, req).Code)
		})
	}
}

func TestValidateBearerToken_QueryKeyForEventStreams(t *testing.T) {
	router := gin.New()
	router.Use(ValidateBearerToken("secret"))
	router.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		query  string
		accept string
		want   int
	}{
		{"event stream with key", "?apiKey=secret", "text/event-stream", http.StatusOK},
		{"event stream with wrong key", "?apiKey=secreto", "text/event-stream", http.StatusUnauthorized},
		{"event stream without key", "", "text/event-stream", http.StatusUnauthorized},
		{"plain request with key", "?apiKey=secret", "application/json", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil)
			req.Header.Set("Accept", tt.accept)
			assert.Equal(t, tt.want, serve(router, req).Code)
		})
	}
}

func TestTokenAuthAndRoles(t *testing.T) {
	tokens, err := utils.NewTokenMaker(testKey)
	require.NoError(t, err)

	router := gin.New()
	router.Use(TokenAuthMiddleware(tokens))
	router.GET("/me", func(c *gin.Context) {
		id, err := ExtractProfileIDFromContext(c.Request.Context())
		require.NoError(t, err)
		role, err := ExtractProfileRoleFromContext(c.Request.Context())
		require.NoError(t, err)
		c.String(http.StatusOK, id+"/"+role)
	})
	router.GET("/doctor", RoleAuthMiddleware("doctor"), func(c *gin.Context) { c.Status(http.StatusOK) })

	patientToken, err := tokens.GenerateAccessToken("p-1", "patient")
	require.NoError(t, err)
	doctorToken, err := tokens.GenerateAccessToken("d-1", "doctor")
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/me?accessToken=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/me?accessToken="+patientToken, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-1/patient", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: doctorToken})
	w = serve(router, req)
	assert.Equal(t, "d-1/doctor", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/doctor?accessToken="+patientToken, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/doctor?accessToken="+doctorToken, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenAuth_RejectsRefreshToken(t *testing.T) {
	tokens, err := utils.NewTokenMaker(testKey)
	require.NoError(t, err)

	router := gin.New()
	router.Use(TokenAuthMiddleware(tokens))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	_, refresh, err := tokens.GenerateTokens("p-1", "patient")
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/me?accessToken="+refresh, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleAuthWithoutSession(t *testing.T) {
	router := gin.New()
	router.GET("/", RoleAuthMiddleware("doctor", "patient"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(router, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestCorsMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CorsMiddleware(DefaultCorsConfig([]string{"https://salvado.example"})))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://salvado.example")
	w := serve(router, req)
	assert.Equal(t, "https://salvado.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(router, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://salvado.example")
	w = serve(router, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
