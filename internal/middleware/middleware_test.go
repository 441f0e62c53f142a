package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/p", handlers...)
	return r
}

func do(r *gin.Engine, auth string) int {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestJWTAndRoles(t *testing.T) {
	specialist := validatorStub{claims: &models.JWTClaims{UserID: "spec-1", Role: models.RoleSpecialist}}
	r := newRouter(JWT(specialist), RequireRoles(models.RoleSpecialist, models.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, do(r, ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, "Basic good"))
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer bad"))
	assert.Equal(t, http.StatusOK, do(r, "Bearer good"))

	adminOnly := newRouter(JWT(specialist), RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, do(adminOnly, "Bearer good"))
}

func TestRateLimiterPerCaller(t *testing.T) {
	limiter := NewRateLimiter(1, 2, nil)
	specialist := validatorStub{claims: &models.JWTClaims{UserID: "spec-1", Role: models.RoleSpecialist}}
	r := newRouter(JWT(specialist), limiter.Middleware())

	assert.Equal(t, http.StatusOK, do(r, "Bearer good"))
	assert.Equal(t, http.StatusOK, do(r, "Bearer good"))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "Bearer good"))
}

func TestResponseMetaStampsProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var meta map[string]interface{}
	r.GET("/p", WithResponseMeta(), func(c *gin.Context) {
		SetMeta(c, "schedule_cached", true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, true, meta["schedule_cached"])
	assert.Contains(t, meta, "processing_time_ms")
}

type observerStub struct{ paths []string }

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.paths = append(o.paths, path)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/weeks/:weekId", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/weeks/2026-W42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, []string{"/weeks/:weekId", "unmatched"}, observer.paths)
}
