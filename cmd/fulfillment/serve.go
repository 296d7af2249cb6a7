package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/api"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/config"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/email"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/fulfillment"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
	stripeinternal "github.com/mixedbysoda-stack/carbonator-fulfillment/internal/stripe"
)

func serveCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the verification and webhook server.

All settings come from the environment (or a .env file):
  STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET, RESEND_API_KEY   required
  PORT, ENV, REQUEST_TIMEOUT, RELEASE_VERSION, EMAIL_*        optional`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(envFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			logger := newLogger(cfg.Env)
			slog.SetDefault(logger)

			if err := run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("fatal", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to read (missing file is ignored)")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Release catalog ───────────────────────────────────────────────────────
	catalog, err := release.ForVersion(cfg.ReleaseVersion)
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	logger.Info("release catalog", "version", catalog.Version())

	// ── Stripe ────────────────────────────────────────────────────────────────
	stripeClient, err := stripeinternal.NewClient(cfg.StripeSecretKey, logger)
	if err != nil {
		return err
	}

	// ── Email (Resend) ────────────────────────────────────────────────────────
	mailer, err := email.NewResendClient(email.ResendConfig{
		APIKey:       cfg.ResendAPIKey,
		FromAddr:     cfg.EmailFromAddr,
		FromName:     cfg.EmailFromName,
		Subject:      cfg.EmailSubject,
		SupportEmail: cfg.SupportEmail,
	}, catalog)
	if err != nil {
		return err
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		fulfillment.NewVerifier(stripeClient, catalog, logger),
		fulfillment.NewFulfiller(stripeClient, mailer, cfg.StripeWebhookSecret, logger),
		api.Config{
			Env:            cfg.Env,
			RequestTimeout: cfg.RequestTimeout,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// In-flight webhook deliveries get 20 seconds to finish sending email.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
