package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/handler"
	"github.com/gorica/clinic-api/internal/model"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

// Sessions guards the routes that need a signed-in caller.
type Sessions interface {
	Authenticate() gin.HandlerFunc
	Forget(id uuid.UUID)
}

// CookieConfig describes the HttpOnly cookie that carries the session token.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	svc      Service
	sessions Sessions
	cookie   CookieConfig
}

func NewHandler(svc Service, sessions Sessions, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, sessions: sessions, cookie: cookie}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		authed := auth.Group("", h.sessions.Authenticate())
		authed.POST("/logout", h.Logout)
		authed.GET("/verify", h.Verify)
		authed.GET("/me", h.Me)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setCookie(c, resp.Token, h.cookie.MaxAge)
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationWrap("Username and password are required", err))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setCookie(c, resp.Token, h.cookie.MaxAge)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if p := handler.Principal(c); p != nil {
		h.sessions.Forget(p.UserID)
	}
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Logout successful"))
}

func (h *Handler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": handler.Principal(c), "authenticated": true})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": handler.Principal(c)})
}

// setCookie writes the session cookie; a negative maxAge deletes it.
func (h *Handler) setCookie(c *gin.Context, token string, maxAge time.Duration) {
	seconds := int(maxAge / time.Second)
	if maxAge < 0 {
		seconds = -1
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, token, seconds, "/", "", h.cookie.Secure, true)
}
