package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gorica/clinic-api/internal/middleware"
	"github.com/gorica/clinic-api/internal/model"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*model.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*model.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeSessions signs in whoever sends "Authorization: Bearer ok".
type fakeSessions struct {
	principal *model.Principal
	forgotten []uuid.UUID
}

func (s *fakeSessions) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer ok" {
			middleware.RespondError(c, apperrors.Unauthorized("Authentication required. No token provided."))
			return
		}
		c.Set(middleware.ContextPrincipal, s.principal)
		c.Next()
	}
}

func (s *fakeSessions) Forget(id uuid.UUID) {
	s.forgotten = append(s.forgotten, id)
}

var user = model.Principal{UserID: uuid.New(), Username: "drlee", Role: model.RoleDoctor, Name: "Dr. Lee"}

func setup(t *testing.T) (*gin.Engine, *MockService, *fakeSessions) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	svc := new(MockService)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	sessions := &fakeSessions{principal: &user}

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	NewHandler(svc, sessions, CookieConfig{Name: "token", MaxAge: 24 * time.Hour}).RegisterRoutes(r.Group("/api"))
	return r, svc, sessions
}

func do(r *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSetsCookie(t *testing.T) {
	r, svc, _ := setup(t)

	svc.On("Login", mock.Anything, &model.LoginRequest{Username: "drlee", Password: "secret1"}).
		Return(&model.AuthResponse{Message: "Login successful", Token: "jwt-token", User: user}, nil)

	w := do(r, http.MethodPost, "/api/auth/login", `{"username":"drlee","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"jwt-token"`)
	assert.Contains(t, w.Body.String(), `"username":"drlee"`)

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "token=jwt-token")
	assert.Contains(t, cookie, "Max-Age=86400")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Strict")
}

func TestLoginMissingFields(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodPost, "/api/auth/login", `{"username":"drlee"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Username and password are required"}`, w.Body.String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	r, svc, _ := setup(t)

	svc.On("Login", mock.Anything, mock.Anything).Return(nil, apperrors.Unauthorized("Invalid username or password"))

	w := do(r, http.MethodPost, "/api/auth/login", `{"username":"drlee","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestRegister(t *testing.T) {
	r, svc, _ := setup(t)

	svc.On("Register", mock.Anything, mock.MatchedBy(func(req *model.RegisterRequest) bool {
		return req.Role == model.RoleEsthetician && req.Name == "Mia"
	})).Return(&model.AuthResponse{Message: "User registered successfully", Token: "t", User: user}, nil)

	w := do(r, http.MethodPost, "/api/auth/register", `{"username":"mia","password":"secret1","name":"Mia","role":"esthetician"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=t")
}

func TestRegisterConflict(t *testing.T) {
	r, svc, _ := setup(t)

	svc.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.Conflict("Username already exists", nil))

	w := do(r, http.MethodPost, "/api/auth/register", `{"username":"mia","password":"secret1","name":"Mia"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Username already exists"}`, w.Body.String())
}

func TestSessionRoutes(t *testing.T) {
	r, _, sessions := setup(t)

	w := do(r, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/auth/me", "", "ok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Dr. Lee"`)

	w = do(r, http.MethodGet, "/api/auth/verify", "", "ok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = do(r, http.MethodPost, "/api/auth/logout", "", "ok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logout successful"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Equal(t, []uuid.UUID{user.UserID}, sessions.forgotten)
}
