package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/config"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupConfig(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	config.Cfg = &config.Configuration{JWTSecret: "secret", JWTIssuer: "marketplace-api", JWTTTL: time.Hour}
	t.Cleanup(func() { config.Cfg = prev })
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthMiddleware("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username"), "id": c.GetString("adminID")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	setupConfig(t)
	r := protectedRouter()

	adminToken, err := utils.GenerateToken("id-1", "admin", "root")
	require.NoError(t, err)
	userToken, err := utils.GenerateToken("id-2", "client", "bob")
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad header format", func(r *http.Request) { r.Header.Set("Authorization", "Token "+adminToken) }, http.StatusUnauthorized},
		{"wrong role", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+userToken) }, http.StatusUnauthorized},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+adminToken) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: adminToken}) }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"username":"root","id":"id-1"}`, w.Body.String())
			}
		})
	}
}

func TestMetricsGuard(t *testing.T) {
	r := gin.New()
	r.GET("/open", MetricsGuard(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/locked", MetricsGuard("10.0.0.9"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locked", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPrometheusMiddlewareCountsRequests(t *testing.T) {
	InitMetrics()
	InitMetrics()

	r := gin.New()
	r.Use(PrometheusMiddleware(), RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
