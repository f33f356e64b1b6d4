package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"clubevents/config"
	_ "clubevents/docs"
	"clubevents/internal/adapters/auth"
	"clubevents/internal/adapters/cache"
	"clubevents/internal/adapters/email"
	"clubevents/internal/adapters/images"
	httpdelivery "clubevents/internal/delivery/http"
	"clubevents/internal/delivery/http/controllers"
	"clubevents/internal/delivery/http/middleware"
	"clubevents/internal/domain"
	"clubevents/internal/metrics"
	"clubevents/internal/repository/postgres"
	"clubevents/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := config.NewLogger(cfg.Environment)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Fail closed before touching the database.
		verifier, err := auth.NewBcryptVerifier(cfg.AdminPasswordHash)
		if err != nil {
			return err
		}
		if cfg.AdminJWTSecret == config.DevJWTSecret {
			logger.Warn("using the development session secret; set ADMIN_JWT_SECRET")
		}
		sessions, err := auth.NewJWTSessions(cfg.AdminJWTSecret, cfg.SessionTTL)
		if err != nil {
			return err
		}

		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return err
		}
		defer db.Close()

		imageStore, err := images.NewImageStore(ctx, images.Config{
			Provider: cfg.Images.Provider,
			Cloudinary: images.CloudinaryConfig{
				CloudName:    cfg.Images.CloudinaryCloudName,
				APIKey:       cfg.Images.CloudinaryAPIKey,
				APISecret:    cfg.Images.CloudinaryAPISecret,
				UploadPreset: cfg.Images.CloudinaryUploadPreset,
			},
			S3: images.S3Config{
				Bucket:          cfg.Images.S3Bucket,
				Region:          cfg.Images.S3Region,
				Endpoint:        cfg.Images.S3Endpoint,
				AccessKeyID:     cfg.Images.AWSAccessKeyID,
				SecretAccessKey: cfg.Images.AWSSecretKey,
			},
		}, logger)
		if err != nil {
			return err
		}

		pageCache := cache.NewPageCache(cfg.CacheMaxAge)
		var invalidator domain.PageInvalidator = pageCache
		if cfg.NATSURL != "" {
			broadcaster, err := cache.NewBroadcaster(cfg.NATSURL, uuid.NewString(), pageCache, logger)
			if err != nil {
				return err
			}
			defer broadcaster.Close()
			invalidator = broadcaster
			logger.Info("cache invalidation broadcast enabled", "nats_url", cfg.NATSURL)
		}

		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Email.Provider,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			SES: email.SESConfig{
				Region:             cfg.Email.SESRegion,
				AccessKeyID:        cfg.Email.SESAccessKeyID,
				SecretAccessKey:    cfg.Email.SESSecretAccessKey,
				InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
			},
		})
		if err != nil {
			return err
		}
		renderer, err := email.NewTemplateRenderer()
		if err != nil {
			return err
		}
		notifier := services.NewEventNotifier(mailer, renderer, cfg.Email.NotifyTo)

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(registry)

		authService := services.NewAuthService(verifier, sessions, m)
		eventService := services.NewEventService(
			postgres.NewEventRepository(db),
			imageStore,
			sessions,
			invalidator,
			notifier,
			m,
			logger,
			services.EventLimits{MaxImageCount: cfg.MaxImageCount, MaxImageBytes: cfg.MaxImageBytes},
			cfg.RequestTimeout,
		)

		eventController := controllers.NewEventController(logger, eventService, pageCache,
			controllers.CachePolicy{SMaxAge: cfg.CacheMaxAge, StaleWhileRevalidate: cfg.StaleWhileRevalidate},
			cfg.MaxImageCount, cfg.MaxImageBytes)
		authController := controllers.NewAuthController(logger, authService, cfg.SessionTTL, cfg.SecureCookies)

		loginLimiter := middleware.NewRateLimiter(cfg.LoginAttempts, time.Minute)
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					loginLimiter.Cleanup(10 * time.Minute)
				}
			}
		}()

		mux := httpdelivery.NewRouter(eventController, authController, httpdelivery.RouterDeps{
			Logger:            logger,
			Sessions:          sessions,
			LoginLimiter:      loginLimiter,
			Gatherer:          registry,
			TrustForwardedFor: cfg.TrustForwardedFor,
		})
		// Instrument wraps the mux directly so r.Pattern is set when it records.
		var handler http.Handler = middleware.Instrument(m, mux)
		handler = middleware.CORS(cfg.AllowedOrigins, handler)
		handler = middleware.LoggingMiddleware(logger, handler)
		handler = middleware.RequestID(handler)

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       2 * time.Minute,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       2 * time.Minute,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("server failed", "err", err)
				return err
			}
		case <-ctx.Done():
			logger.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "err", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil
	},
}
