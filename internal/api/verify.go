package api

import (
	"errors"
	"net/http"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/fulfillment"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
)

// ─── GET /api/verify-session ──────────────────────────────────────────────────

type verifySessionResponse struct {
	Verified      bool                        `json:"verified"`
	Version       string                      `json:"version,omitempty"`
	Downloads     map[release.Platform]string `json:"downloads,omitempty"`
	CustomerEmail *string                     `json:"customer_email"`
}

type verifyFailedResponse struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error"`
}

// handleVerifySession backs the thank-you page: given ?session_id=cs_...,
// it returns the download links once Stripe reports the session paid.
//
// 200 verified, 402 not paid, 400 bad input or Stripe failure, 405 wrong
// method, 204 preflight.
func (s *Server) handleVerifySession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		respondErr(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID := r.URL.Query().Get("session_id")

	result, err := s.verifier.Verify(r.Context(), sessionID)
	switch {
	case errors.Is(err, fulfillment.ErrMalformedIdentifier):
		respondErr(w, http.StatusBadRequest, "Invalid session_id")
		return
	case errors.Is(err, fulfillment.ErrInvalidRequest):
		respondErr(w, http.StatusBadRequest, "Missing session_id")
		return
	case err != nil:
		// Stripe's message stays in the logs.
		s.logger.Error("verify-session: could not verify", "error", err, logField(r))
		respond(w, http.StatusBadRequest, verifyFailedResponse{
			Verified: false,
			Error:    "Could not verify payment session",
		})
		return
	}

	if !result.Verified {
		respond(w, http.StatusPaymentRequired, verifyFailedResponse{
			Verified: false,
			Error:    "Payment not completed",
		})
		return
	}

	resp := verifySessionResponse{
		Verified:  true,
		Version:   result.Version,
		Downloads: result.Downloads,
	}
	if result.CustomerEmail != "" {
		resp.CustomerEmail = &result.CustomerEmail
	}
	respond(w, http.StatusOK, resp)
}
