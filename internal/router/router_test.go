package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gorica/clinic-api/internal/middleware"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

type stubHandler struct {
	method, path string
}

func (s stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Handle(s.method, s.path, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
}

type headerAuth struct{}

func (headerAuth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			middleware.RespondError(c, apperrors.Unauthorized("Authentication required. No token provided."))
			return
		}
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := NewRouter(headerAuth{}, Handlers{
		Health:       stubHandler{http.MethodGet, "/health"},
		Auth:         stubHandler{http.MethodPost, "/auth/login"},
		Appointments: stubHandler{http.MethodGet, "/appointments"},
		Patients:     stubHandler{http.MethodGet, "/patients"},
		Reports:      stubHandler{http.MethodGet, "/reports"},
	}, Config{
		CORS:      middleware.DefaultCORSConfig([]string{"http://localhost:5173"}),
		Security:  middleware.DefaultSecurityConfig(false),
		SizeLimit: middleware.DefaultSizeLimitConfig(1 << 20),
	})
	r.Setup()
	return r.Engine()
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	engine := newTestRouter()

	for _, path := range []string{"/api/appointments", "/api/patients", "/api/reports"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer x")
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestPublicRoutes(t *testing.T) {
	engine := newTestRouter()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	engine := newTestRouter()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}
