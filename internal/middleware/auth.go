package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/pkg/auth"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

const ContextPrincipal = "principal"

// PrincipalLoader loads the active user behind a token's subject.
type PrincipalLoader interface {
	Principal(ctx context.Context, id uuid.UUID) (*model.Principal, error)
}

type AuthMiddleware struct {
	jwtSvc     auth.JWTService
	loader     PrincipalLoader
	cookieName string
	principals *cache.Cache
}

// NewAuthMiddleware caches loaded principals for ttl; a zero ttl disables
// the cache.
func NewAuthMiddleware(jwtSvc auth.JWTService, loader PrincipalLoader, cookieName string, ttl time.Duration) *AuthMiddleware {
	m := &AuthMiddleware{jwtSvc: jwtSvc, loader: loader, cookieName: cookieName}
	if ttl > 0 {
		m.principals = cache.New(ttl, 2*ttl)
	}
	return m
}

// Authenticate accepts a bearer token or the session cookie and attaches
// the caller's principal to the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token == "" {
			RespondError(c, apperrors.Unauthorized("Authentication required. No token provided."))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(token)
		if err != nil {
			RespondError(c, apperrors.Unauthorized("Invalid or expired token."))
			return
		}

		principal, err := m.load(c.Request.Context(), claims.UserID)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// Forget drops a cached principal, e.g. after a password change.
func (m *AuthMiddleware) Forget(id uuid.UUID) {
	if m.principals != nil {
		m.principals.Delete(id.String())
	}
}

func (m *AuthMiddleware) load(ctx context.Context, id uuid.UUID) (*model.Principal, error) {
	if m.principals != nil {
		if p, ok := m.principals.Get(id.String()); ok {
			return p.(*model.Principal), nil
		}
	}
	p, err := m.loader.Principal(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.principals != nil {
		m.principals.SetDefault(id.String(), p)
	}
	return p, nil
}

func (m *AuthMiddleware) token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil {
			return cookie
		}
	}
	return ""
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (*model.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil, false
	}
	p, ok := v.(*model.Principal)
	return p, ok
}
