package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/fulfillment"
)

// ─── POST /api/webhooks/stripe ────────────────────────────────────────────────

// handleStripeWebhook is the entry point for all Stripe webhook deliveries.
//
// Only checkout.session.completed sends anything. Once the signature checks
// out the response is always 200: any failure after that point is logged by
// the fulfiller and acknowledged so Stripe stops retrying.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// ── 1. Read and size-limit the body ───────────────────────────────────────
	// The signature check must run against the exact bytes Stripe signed.
	r.Body = http.MaxBytesReader(w, r.Body, 65536) // 64 KB
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondText(w, http.StatusBadRequest, "could not read request body")
		return
	}

	// ── 2. Verify the Stripe-Signature header and fulfill ─────────────────────
	outcome, err := s.fulfiller.HandleDelivery(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, fulfillment.ErrSignatureInvalid) {
		s.logger.Warn("webhook: invalid signature", "error", err, logField(r))
		respondText(w, http.StatusBadRequest, "Webhook Error: "+err.Error())
		return
	}
	if err != nil {
		// HandleDelivery only fails on signature errors; keep the contract
		// if that ever changes.
		s.logger.Error("webhook: unexpected error", "error", err, logField(r))
		respondText(w, http.StatusOK, "OK")
		return
	}

	s.logger.Info("webhook: handled", "outcome", outcome.String(), logField(r))
	respondText(w, http.StatusOK, outcome.Ack())
}
