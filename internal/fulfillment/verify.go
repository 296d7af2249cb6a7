package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
	stripeinternal "github.com/mixedbysoda-stack/carbonator-fulfillment/internal/stripe"
)

// Verification is the result of a well-formed, successful lookup.
type Verification struct {
	Verified bool

	// Version and Downloads are set only when Verified is true.
	Version   string
	Downloads map[release.Platform]string

	// CustomerEmail is empty when Stripe has no email for the session.
	CustomerEmail string
}

// Verifier confirms that a Checkout Session was paid. It never writes to
// Stripe.
type Verifier struct {
	stripe  stripeinternal.Client
	catalog release.Catalog
	logger  *slog.Logger
}

// NewVerifier constructs a Verifier.
func NewVerifier(stripeClient stripeinternal.Client, catalog release.Catalog, logger *slog.Logger) *Verifier {
	return &Verifier{stripe: stripeClient, catalog: catalog, logger: logger}
}

// Verify checks sessionID's shape, then asks Stripe for its payment status.
//
// Errors are ErrInvalidRequest (empty id), ErrMalformedIdentifier (wrong
// prefix; Stripe is not called) or ErrUpstreamLookup. An unpaid session is
// not an error: it yields Verification{Verified: false}.
func (v *Verifier) Verify(ctx context.Context, sessionID string) (Verification, error) {
	if sessionID == "" {
		return Verification{}, fmt.Errorf("%w: missing session id", ErrInvalidRequest)
	}
	if !stripeinternal.IsCheckoutSessionID(sessionID) {
		return Verification{}, ErrMalformedIdentifier
	}

	session, err := v.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		v.logger.Error("verify: stripe session lookup failed",
			"session_id", sessionID,
			"error", err,
		)
		return Verification{}, fmt.Errorf("%w: %w", ErrUpstreamLookup, err)
	}

	if !session.Paid() {
		v.logger.Info("verify: session not paid",
			"session_id", sessionID,
			"payment_status", session.PaymentStatus,
		)
		return Verification{Verified: false}, nil
	}

	return Verification{
		Verified:      true,
		Version:       v.catalog.Version(),
		Downloads:     v.catalog.Downloads(),
		CustomerEmail: session.CustomerEmail,
	}, nil
}
