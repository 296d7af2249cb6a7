// Package fulfillment implements the two buyer-facing flows: confirming a
// Checkout Session for the thank-you page, and emailing download links when
// Stripe reports a completed checkout.
//
// It depends only on the narrow stripe.Client and email.Sender interfaces,
// so both flows run against stubs in tests. HTTP concerns live in api/.
package fulfillment

import (
	"errors"
	"fmt"
)

var (
	// ErrMethodNotAllowed is returned for any HTTP method a flow does not accept.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrInvalidRequest means required input was missing or unusable.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMalformedIdentifier is an ErrInvalidRequest for a session id that
	// does not look like a Checkout Session id.
	ErrMalformedIdentifier = fmt.Errorf("%w: malformed session id", ErrInvalidRequest)

	// ErrSignatureInvalid means the webhook authenticity check failed.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrUpstreamLookup means Stripe could not return the session. The
	// wrapped detail is for logs only.
	ErrUpstreamLookup = errors.New("upstream lookup failed")

	// ErrSideEffect marks a failure after a paid checkout was authenticated
	// (no recipient, undecodable session, email dispatch). Never surfaced
	// to Stripe as a failed delivery.
	ErrSideEffect = errors.New("fulfillment side effect failed")
)
