// Assessment relay server: stores classified results and mails reports on purchase.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/assessment-relay/internal/api"
	"github.com/ashureev/assessment-relay/internal/assessment"
	"github.com/ashureev/assessment-relay/internal/config"
	"github.com/ashureev/assessment-relay/internal/delivery"
	"github.com/ashureev/assessment-relay/internal/mailer"
	"github.com/ashureev/assessment-relay/internal/middleware"
	"github.com/ashureev/assessment-relay/internal/scoring"
	"github.com/ashureev/assessment-relay/internal/shared"
	"github.com/ashureev/assessment-relay/internal/store"
	"github.com/ashureev/assessment-relay/internal/sweeper"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.Store.Backend, "result_ttl", cfg.Store.TTL)

	// Scoring.
	profile := scoring.DefaultProfile()
	if cfg.Scoring.ProfilePath != "" {
		profile, err = scoring.LoadProfile(cfg.Scoring.ProfilePath)
		if err != nil {
			slog.Error("Failed to load score profile", "path", cfg.Scoring.ProfilePath, "error", err)
			os.Exit(1)
		}
	}
	classifier, err := scoring.NewClassifier(profile.WithThresholds(cfg.Scoring.LowMax, cfg.Scoring.ModerateMax))
	if err != nil {
		slog.Error("Invalid score thresholds", "error", err)
		os.Exit(1)
	}
	active := classifier.Profile()
	slog.Info("Classifier ready", "profile", active.Name, "low_max", active.LowMax, "moderate_max", active.ModerateMax)

	// Result store.
	results, err := store.Open(context.Background(), store.Config{
		Backend:  cfg.Store.Backend,
		DBPath:   cfg.Store.DBPath,
		RedisURL: cfg.Store.RedisURL,
		TTL:      cfg.Store.TTL,
	}, store.WithRetryPolicy(shared.RetryPolicy{
		MaxRetries: cfg.Retry.DatabaseMaxRetries,
		BaseDelay:  cfg.Retry.DatabaseRetryBaseDelay,
	}))
	if err != nil {
		slog.Error("Failed to initialize result store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := results.Close(); closeErr != nil {
			slog.Error("Failed to close result store", "error", closeErr)
		}
	}()

	if err := results.Ping(context.Background()); err != nil {
		slog.Error("Result store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Result store connected")

	// Mail.
	var sender mailer.Sender
	if cfg.MailEnabled() {
		sender = mailer.NewResendSender(cfg.Mail.ResendAPIKey)
		slog.Info("Resend mailer enabled")
	} else {
		sender = mailer.NewLogSender(logger)
		slog.Warn("RESEND_API_KEY not set, reports will only be logged")
	}

	// Services.
	svc := assessment.NewService(classifier, results, logger)
	dispatcher := delivery.NewDispatcher(svc, sender, delivery.Config{
		From:    cfg.Mail.From,
		Subject: cfg.Mail.Subject,
	}, logger)

	// Handlers.
	resultsHandler := api.NewResultsHandler(svc, results.TTL())
	webhookHandler := api.NewWebhookHandler(dispatcher, cfg.Timeout.Delivery)
	healthHandler := api.NewHealthHandler(results, cfg.Timeout.HealthCheck)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	healthHandler.RegisterHealth(r)
	resultsHandler.RegisterRoutes(r)
	webhookHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout.Delivery + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepDone := sweeper.Start(ctx, results, cfg.Store.SweepInterval)
	slog.Info("Sweeper started", "interval", cfg.Store.SweepInterval)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	<-sweepDone

	slog.Info("Server stopped successfully")
}
