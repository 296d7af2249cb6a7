package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/email"
	stripeinternal "github.com/mixedbysoda-stack/carbonator-fulfillment/internal/stripe"
)

// FallbackAmount is shown on the receipt when the session carries no total.
const FallbackAmount = "$20.00"

// Outcome is how a single webhook delivery ended once its signature checked
// out. Every Outcome is acknowledged to Stripe with a 2xx.
type Outcome int

const (
	// OutcomeFulfilled: email accepted by the provider.
	OutcomeFulfilled Outcome = iota
	// OutcomeIgnored: not a checkout.session.completed event.
	OutcomeIgnored
	// OutcomeNotPaid: completed session whose payment_status is not paid.
	OutcomeNotPaid
	// OutcomeNoEmail: paid session without a customer email.
	OutcomeNoEmail
	// OutcomeEmailFailed: the provider rejected or never received the email.
	OutcomeEmailFailed
	// OutcomeUndecodable: the embedded session could not be parsed.
	OutcomeUndecodable
)

// Ack is the plain-text body returned to Stripe for the outcome.
func (o Outcome) Ack() string {
	switch o {
	case OutcomeNotPaid:
		return "Not paid — skipped"
	case OutcomeNoEmail:
		return "No email — skipped"
	case OutcomeEmailFailed:
		return "Email send failed"
	default:
		return "OK"
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeFulfilled:
		return "fulfilled"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNotPaid:
		return "not_paid"
	case OutcomeNoEmail:
		return "no_email"
	case OutcomeEmailFailed:
		return "email_failed"
	case OutcomeUndecodable:
		return "undecodable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Fulfiller turns verified Stripe webhook deliveries into download emails.
//
// Stripe delivers events at-least-once. Nothing here deduplicates: a
// redelivered completed checkout sends a second email.
type Fulfiller struct {
	stripe        stripeinternal.Client
	mailer        email.Sender
	webhookSecret string
	logger        *slog.Logger

	// now stamps the footer year. Replaced in tests.
	now func() time.Time
}

// NewFulfiller constructs a Fulfiller.
func NewFulfiller(stripeClient stripeinternal.Client, mailer email.Sender, webhookSecret string, logger *slog.Logger) *Fulfiller {
	return &Fulfiller{
		stripe:        stripeClient,
		mailer:        mailer,
		webhookSecret: webhookSecret,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock returns a copy of f that reads the time from now.
func (f *Fulfiller) WithClock(now func() time.Time) *Fulfiller {
	cp := *f
	cp.now = now
	return &cp
}

// HandleDelivery authenticates one raw webhook delivery and fulfills it.
// The only error it returns wraps ErrSignatureInvalid; every other problem
// is logged and folded into the Outcome.
func (f *Fulfiller) HandleDelivery(ctx context.Context, payload []byte, sigHeader string) (Outcome, error) {
	event, err := f.stripe.VerifyWebhook(payload, sigHeader, f.webhookSecret)
	if err != nil {
		f.logger.Warn("webhook: signature verification failed", "error", err)
		return 0, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	}
	return f.Fulfill(ctx, event), nil
}

// Fulfill runs the post-authentication steps for a verified event, strictly
// in order: event filter, payment gate, recipient check, send.
func (f *Fulfiller) Fulfill(ctx context.Context, event stripeinternal.Event) Outcome {
	log := f.logger.With("event_id", event.ID, "type", event.Type)

	if event.Type != stripeinternal.EventCheckoutSessionCompleted {
		log.Debug("webhook: unhandled event type")
		return OutcomeIgnored
	}

	session, err := stripeinternal.ExtractCheckoutSession(event)
	if err != nil {
		log.Error("webhook: could not decode checkout session",
			"error", fmt.Errorf("%w: %w", ErrSideEffect, err),
		)
		return OutcomeUndecodable
	}
	log = log.With("session_id", session.ID)

	if !session.Paid() {
		log.Info("webhook: session not paid, skipping email", "payment_status", session.PaymentStatus)
		return OutcomeNotPaid
	}

	if session.CustomerEmail == "" {
		log.Error("webhook: no customer email found in session",
			"error", ErrSideEffect,
		)
		return OutcomeNoEmail
	}

	sendErr := f.mailer.SendDownloadLinks(ctx, email.DownloadLinksParams{
		To:         session.CustomerEmail,
		AmountPaid: FormatAmount(session),
		OrderID:    session.ID,
		Year:       f.now().Year(),
	})
	return f.acknowledgeRegardlessOfDispatch(log, session.CustomerEmail, sendErr)
}

// acknowledgeRegardlessOfDispatch maps the email send result to an Outcome
// that is always acknowledged. A failed send is logged only; it must never
// reach Stripe as a non-2xx, or Stripe redelivers the whole event.
func (f *Fulfiller) acknowledgeRegardlessOfDispatch(log *slog.Logger, to string, sendErr error) Outcome {
	if sendErr != nil {
		log.Error("webhook: failed to send delivery email",
			"to", to,
			"error", fmt.Errorf("%w: %w", ErrSideEffect, sendErr),
		)
		return OutcomeEmailFailed
	}
	log.Info("webhook: delivery email sent", "to", to)
	return OutcomeFulfilled
}

// FormatAmount renders amount_total as dollars with two decimals, or
// FallbackAmount when the session has no (or a zero) total.
func FormatAmount(s stripeinternal.CheckoutSession) string {
	if !s.HasAmountTotal || s.AmountTotal == 0 {
		return FallbackAmount
	}
	return fmt.Sprintf("$%.2f", float64(s.AmountTotal)/100)
}
