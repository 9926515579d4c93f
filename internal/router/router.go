package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gorica/clinic-api/internal/middleware"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Authenticator produces the middleware guarding the clinic API.
type Authenticator interface {
	Authenticate() gin.HandlerFunc
}

// MetricsHandler records request metrics and serves the scrape endpoint.
type MetricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type Config struct {
	DevMode        bool
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	SizeLimit      middleware.SizeLimitConfig
	RequestTimeout time.Duration
	// RateLimit is nil when rate limiting is disabled.
	RateLimit   *middleware.RateLimiterConfig
	MetricsPath string
}

type Handlers struct {
	Health       Handler
	Auth         Handler
	Appointments Handler
	Patients     Handler
	Reports      Handler
	// Metrics is nil when metrics are disabled.
	Metrics MetricsHandler
}

type Router struct {
	engine *gin.Engine
	auth   Authenticator
	h      Handlers
	config Config
}

func NewRouter(auth Authenticator, h Handlers, config Config) *Router {
	engine := gin.New()
	r := &Router{engine: engine, auth: auth, h: h, config: config}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(config.DevMode),
	)
	if h.Metrics != nil {
		engine.Use(h.Metrics.Middleware())
	}
	engine.Use(
		middleware.CORS(config.CORS),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.SizeLimit),
		middleware.Timeout(config.RequestTimeout),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Route"))
	})
	return r
}

// Setup registers every route. Everything under /api except /api/auth
// requires a signed-in user.
func (r *Router) Setup() {
	middleware.RegisterValidators()

	r.h.Health.RegisterRoutes(&r.engine.RouterGroup)
	if r.h.Metrics != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.h.Metrics.Handler())
	}

	api := r.engine.Group("/api")
	r.h.Auth.RegisterRoutes(api)

	protected := api.Group("", r.auth.Authenticate())
	r.h.Patients.RegisterRoutes(protected)
	r.h.Appointments.RegisterRoutes(protected)
	r.h.Reports.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
