package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func request(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/planner/session", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New([]string{"https://planner.example.org/"}))
	r.GET("/planner/session", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := request(r, http.MethodOptions, "https://planner.example.org")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://planner.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(r, http.MethodOptions, "https://evil.example.org")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(r, http.MethodGet, "https://evil.example.org")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
