// Package api implements the HTTP layer for the Carbonator fulfillment
// service. Handlers are methods on *Server. Each handler file is responsible
// for one endpoint and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/fulfillment"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// RequestTimeout bounds every request, including provider calls.
	RequestTimeout time.Duration
}

// SessionVerifier is the thank-you page's payment check.
// *fulfillment.Verifier satisfies it.
type SessionVerifier interface {
	Verify(ctx context.Context, sessionID string) (fulfillment.Verification, error)
}

// DeliveryHandler authenticates and fulfills one Stripe webhook delivery.
// *fulfillment.Fulfiller satisfies it.
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, payload []byte, sigHeader string) (fulfillment.Outcome, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// verifier answers GET /api/verify-session.
	verifier SessionVerifier

	// fulfiller handles POST /api/webhooks/stripe.
	fulfiller DeliveryHandler

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	verifier SessionVerifier,
	fulfiller DeliveryHandler,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		verifier:  verifier,
		fulfiller: fulfiller,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	// Both endpoints check the method themselves so a wrong method gets the
	// endpoint's own 405 body rather than chi's.
	r.Route("/api", func(r chi.Router) {
		// Session verification, called cross-origin by the thank-you page.
		r.With(s.corsMiddleware).HandleFunc("/verify-session", s.handleVerifySession)

		// Stripe webhook. No auth; the signature is checked inside the handler.
		r.HandleFunc("/webhooks/stripe", s.handleStripeWebhook)
	})

	// ── Legacy function paths ─────────────────────────────────────────────────
	// The storefront and the Stripe dashboard still point at these.
	r.Route("/.netlify/functions", func(r chi.Router) {
		r.With(s.corsMiddleware).HandleFunc("/verify-session", s.handleVerifySession)
		r.HandleFunc("/stripe-webhook", s.handleStripeWebhook)
	})

	return r
}
