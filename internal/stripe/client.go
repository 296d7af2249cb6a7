// Package stripe defines the narrow interface the fulfillment flow uses for
// Stripe Checkout lookups and webhook verification, and provides helpers for
// decoding the checkout.session object carried inside webhook events.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// CheckoutSessionPrefix is the prefix of every Stripe Checkout Session id.
const CheckoutSessionPrefix = "cs_"

// EventCheckoutSessionCompleted is the only event type that triggers fulfillment.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// PaymentStatus mirrors checkout.session.payment_status.
type PaymentStatus string

const (
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusUnpaid            PaymentStatus = "unpaid"
	PaymentStatusNoPaymentRequired PaymentStatus = "no_payment_required"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// CheckoutSession is the subset of a Stripe Checkout Session that callers need.
type CheckoutSession struct {
	ID            string
	PaymentStatus PaymentStatus

	// CustomerEmail is customer_details.email; empty when Stripe did not
	// collect one.
	CustomerEmail string

	// AmountTotal is in minor currency units (cents). HasAmountTotal is false
	// when the field was absent or null in the payload.
	AmountTotal    int64
	HasAmountTotal bool
}

// Paid reports whether Stripe considers the session paid.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// Event is a verified Stripe webhook event. DataRaw contains the raw JSON of
// the event's data.object so handlers can unmarshal only what they need.
type Event struct {
	ID      string
	Type    string
	DataRaw json.RawMessage
}

// ─── CLIENT INTERFACE ─────────────────────────────────────────────────────────

// Client is the interface the fulfillment package uses for all Stripe calls.
// The concrete implementation wraps the official stripe-go SDK.
// Tests inject a stub.
type Client interface {
	// GetCheckoutSession retrieves a Checkout Session by id. Read-only.
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)

	// VerifyWebhook validates the Stripe-Signature header and returns the
	// parsed event. Returns an error if the signature is invalid or expired.
	VerifyWebhook(payload []byte, sigHeader string, secret string) (Event, error)
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

// IsCheckoutSessionID reports whether id has the shape of a Checkout Session
// id. It only checks the prefix; Stripe decides whether the session exists.
func IsCheckoutSessionID(id string) bool {
	return strings.HasPrefix(id, CheckoutSessionPrefix)
}

// ExtractCheckoutSession decodes the checkout.session object embedded in a
// checkout.session.* event.
func ExtractCheckoutSession(event Event) (CheckoutSession, error) {
	var obj struct {
		ID              string        `json:"id"`
		PaymentStatus   PaymentStatus `json:"payment_status"`
		AmountTotal     *int64        `json:"amount_total"`
		CustomerDetails *struct {
			Email *string `json:"email"`
		} `json:"customer_details"`
	}
	if err := json.Unmarshal(event.DataRaw, &obj); err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe: unmarshal checkout session: %w", err)
	}
	if obj.ID == "" {
		return CheckoutSession{}, fmt.Errorf("stripe: checkout session id is empty in event %s", event.ID)
	}

	s := CheckoutSession{
		ID:            obj.ID,
		PaymentStatus: obj.PaymentStatus,
	}
	if obj.AmountTotal != nil {
		s.AmountTotal = *obj.AmountTotal
		s.HasAmountTotal = true
	}
	if obj.CustomerDetails != nil && obj.CustomerDetails.Email != nil {
		s.CustomerEmail = *obj.CustomerDetails.Email
	}
	return s, nil
}
