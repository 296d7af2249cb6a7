package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// stripeClient is the concrete implementation of Client backed by the
// official stripe-go SDK. Construct it with NewClient.
type stripeClient struct {
	sessions session.Client
}

// NewClient returns a Client backed by the Stripe SDK. secretKey is the
// STRIPE_SECRET_KEY env var; an empty key is rejected here so a misconfigured
// deployment fails at startup rather than on the first buyer.
func NewClient(secretKey string, logger *slog.Logger) (Client, error) {
	return NewClientWithBackend(secretKey, NewBackend(stripe.APIURL, logger))
}

// NewClientWithBackend is NewClient with an explicit API backend. Tests point
// it at an httptest server.
func NewClientWithBackend(secretKey string, backend stripe.Backend) (Client, error) {
	if secretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	return &stripeClient{
		sessions: session.Client{B: backend, Key: secretKey},
	}, nil
}

// NewBackend builds an API backend for baseURL whose SDK logging goes to
// logger instead of stderr.
func NewBackend(baseURL string, logger *slog.Logger) stripe.Backend {
	return stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(baseURL),
		LeveledLogger: slogLeveledLogger{logger: logger},
	})
}

// GetCheckoutSession retrieves a Checkout Session and flattens the fields the
// verifier needs.
func (c *stripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	// Propagate context deadline to the Stripe HTTP call.
	params.Context = ctx

	s, err := c.sessions.Get(sessionID, params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe: get checkout session %s: %w", sessionID, err)
	}

	out := CheckoutSession{
		ID:             s.ID,
		PaymentStatus:  PaymentStatus(s.PaymentStatus),
		AmountTotal:    s.AmountTotal,
		HasAmountTotal: s.AmountTotal != 0,
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out, nil
}

// VerifyWebhook validates the Stripe-Signature header and returns the parsed
// event. Returns an error if the signature is invalid or the tolerance window
// (300 seconds) has expired. The event's API version is not checked against
// the SDK's: only data.object fields stable across versions are read.
func (c *stripeClient) VerifyWebhook(payload []byte, sigHeader string, secret string) (Event, error) {
	stripeEvent, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("stripe: webhook verification failed: %w", err)
	}

	ev := Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}
	if stripeEvent.Data != nil {
		ev.DataRaw = stripeEvent.Data.Raw
	}
	return ev, nil
}

// ─── LOGGING ──────────────────────────────────────────────────────────────────

// slogLeveledLogger adapts *slog.Logger to stripe.LeveledLoggerInterface.
type slogLeveledLogger struct {
	logger *slog.Logger
}

func (l slogLeveledLogger) Debugf(format string, v ...interface{}) {
	l.log(slog.LevelDebug, format, v...)
}

func (l slogLeveledLogger) Infof(format string, v ...interface{}) {
	l.log(slog.LevelInfo, format, v...)
}

func (l slogLeveledLogger) Warnf(format string, v ...interface{}) {
	l.log(slog.LevelWarn, format, v...)
}

func (l slogLeveledLogger) Errorf(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
}

func (l slogLeveledLogger) log(level slog.Level, format string, v ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Log(context.Background(), level, fmt.Sprintf(format, v...), "component", "stripe-sdk")
}
