package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/gorica/clinic-api/internal/config"
	"github.com/gorica/clinic-api/internal/email"
	appointmentHandler "github.com/gorica/clinic-api/internal/handler/appointment"
	authHandler "github.com/gorica/clinic-api/internal/handler/auth"
	"github.com/gorica/clinic-api/internal/handler/health"
	patientHandler "github.com/gorica/clinic-api/internal/handler/patient"
	promHandler "github.com/gorica/clinic-api/internal/handler/prometheus"
	reportHandler "github.com/gorica/clinic-api/internal/handler/report"
	"github.com/gorica/clinic-api/internal/middleware"
	"github.com/gorica/clinic-api/internal/repository/postgres"
	"github.com/gorica/clinic-api/internal/router"
	appointmentService "github.com/gorica/clinic-api/internal/service/appointment"
	authService "github.com/gorica/clinic-api/internal/service/auth"
	eventService "github.com/gorica/clinic-api/internal/service/event"
	patientService "github.com/gorica/clinic-api/internal/service/patient"
	reportService "github.com/gorica/clinic-api/internal/service/report"
	"github.com/gorica/clinic-api/pkg/auth"
	"github.com/gorica/clinic-api/pkg/logger"
	"github.com/gorica/clinic-api/pkg/messaging"
	"github.com/gorica/clinic-api/pkg/messaging/redis"
	"github.com/gorica/clinic-api/pkg/metrics"
	"github.com/gorica/clinic-api/pkg/security"
)

const metricsNamespace = "clinic"

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			migrate, _ := cmd.Flags().GetBool("migrate")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, migrate bool) error {
	lg := setupLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		count, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			return err
		}
		lg.Info().Int("applied", count).Msg("migrations applied")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(metricsNamespace, registry)

	broker, err := openBroker(ctx, cfg, lg)
	if err != nil {
		return err
	}
	if broker != nil {
		defer broker.Close()
	}
	var mailer email.Service
	if cfg.Mail.Host != "" {
		mailer = email.NewSMTPService(cfg.Mail)
		lg.Info().Str("host", cfg.Mail.Host).Strs("to", cfg.Mail.To).Msg("booking notices enabled")
	}
	events := eventService.NewService(broker, cfg.Redis.Channel, mailer, m, lg)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, jwtExpiry(cfg))
	authSvc := authService.NewService(userRepo, jwtSvc, security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.PasswordPolicy{Strict: cfg.Auth.StrictPasswords}, lg)
	patientSvc := patientService.NewService(patientRepo, appointmentRepo, lg)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, events, m, lg)
	reportSvc := reportService.NewService(reportRepo, appointmentRepo, lg)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, authSvc, cfg.Auth.CookieName, cfg.Auth.PrincipalCacheTTL)

	handlers := router.Handlers{
		Health: health.NewHandler(db),
		Auth: authHandler.NewHandler(authSvc, authMiddleware, authHandler.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.IsProduction(),
			MaxAge: jwtExpiry(cfg),
		}),
		Appointments: appointmentHandler.NewHandler(appointmentSvc),
		Patients:     patientHandler.NewHandler(patientSvc),
		Reports:      reportHandler.NewHandler(reportSvc),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = promHandler.New(registry, m)
	}

	r := router.NewRouter(authMiddleware, handlers, routerConfig(cfg))
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Int("port", cfg.Server.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	lg.Info().Msg("server exited properly")
	return nil
}

func routerConfig(cfg *config.Config) router.Config {
	rc := router.Config{
		DevMode:        cfg.IsDevelopment(),
		CORS:           middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
		Security:       middleware.DefaultSecurityConfig(cfg.IsProduction()),
		SizeLimit:      middleware.DefaultSizeLimitConfig(cfg.Server.MaxBodyBytes),
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsPath:    cfg.Metrics.Path,
	}
	if cfg.RateLimit.Enabled {
		rc.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}
	return rc
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	return logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openBroker returns nil when no Redis URL is configured.
func openBroker(ctx context.Context, cfg *config.Config, lg zerolog.Logger) (messaging.Broker, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}
	broker, err := redis.NewRedisBroker(ctx, redis.Config{URL: cfg.Redis.URL}, lg)
	if err != nil {
		return nil, err
	}
	lg.Info().Str("channel", cfg.Redis.Channel).Msg("appointment events enabled")
	return broker, nil
}

func jwtExpiry(cfg *config.Config) time.Duration {
	return time.Duration(cfg.JWT.ExpiryHours) * time.Hour
}
