package stripe_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stripeinternal "github.com/mixedbysoda-stack/carbonator-fulfillment/internal/stripe"
)

const testWebhookSecret = "whsec_test_secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ─── IsCheckoutSessionID ──────────────────────────────────────────────────────

func TestIsCheckoutSessionID(t *testing.T) {
	cases := map[string]bool{
		"cs_test_123":      true,
		"cs_live_a1b2c3":   true,
		"pi_123":           false,
		"":                 false,
		"CS_test_123":      false,
		" cs_test_leading": false,
	}
	for id, want := range cases {
		assert.Equal(t, want, stripeinternal.IsCheckoutSessionID(id), "id %q", id)
	}
}

// ─── ExtractCheckoutSession ───────────────────────────────────────────────────

func TestExtractCheckoutSession_Success(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{
		"id":             "cs_test_123",
		"object":         "checkout.session",
		"payment_status": "paid",
		"amount_total":   2000,
		"customer_details": map[string]any{
			"email": "buyer@example.com",
		},
	})

	s, err := stripeinternal.ExtractCheckoutSession(stripeinternal.Event{
		ID:      "evt_test",
		Type:    stripeinternal.EventCheckoutSessionCompleted,
		DataRaw: raw,
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", s.ID)
	assert.True(t, s.Paid())
	assert.Equal(t, "buyer@example.com", s.CustomerEmail)
	assert.True(t, s.HasAmountTotal)
	assert.EqualValues(t, 2000, s.AmountTotal)
}

func TestExtractCheckoutSession_NullFieldsAreAbsent(t *testing.T) {
	raw := []byte(`{"id":"cs_test_1","payment_status":"unpaid","amount_total":null,"customer_details":{"email":null}}`)

	s, err := stripeinternal.ExtractCheckoutSession(stripeinternal.Event{DataRaw: raw})
	require.NoError(t, err)

	assert.False(t, s.Paid())
	assert.Equal(t, stripeinternal.PaymentStatusUnpaid, s.PaymentStatus)
	assert.False(t, s.HasAmountTotal)
	assert.Empty(t, s.CustomerEmail)
}

func TestExtractCheckoutSession_MissingCustomerDetails(t *testing.T) {
	raw := []byte(`{"id":"cs_test_2","payment_status":"paid"}`)

	s, err := stripeinternal.ExtractCheckoutSession(stripeinternal.Event{DataRaw: raw})
	require.NoError(t, err)
	assert.Empty(t, s.CustomerEmail)
}

func TestExtractCheckoutSession_EmptyIDReturnsError(t *testing.T) {
	_, err := stripeinternal.ExtractCheckoutSession(stripeinternal.Event{DataRaw: []byte(`{"id":""}`)})
	assert.Error(t, err)
}

func TestExtractCheckoutSession_MalformedJSONReturnsError(t *testing.T) {
	_, err := stripeinternal.ExtractCheckoutSession(stripeinternal.Event{DataRaw: []byte(`{bad json`)})
	assert.Error(t, err)
}

// ─── NewClient ────────────────────────────────────────────────────────────────

func TestNewClient_EmptySecretKeyFails(t *testing.T) {
	_, err := stripeinternal.NewClient("", discardLogger())
	assert.Error(t, err)
}

// ─── VerifyWebhook ────────────────────────────────────────────────────────────

func signedEvent(t *testing.T, secret string) ([]byte, string) {
	t.Helper()
	payload := []byte(`{
  "id": "evt_test_webhook",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "checkout.session.completed",
  "data": {"object": {"id": "cs_test_123", "object": "checkout.session", "payment_status": "paid"}}
}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	})
	return signed.Payload, signed.Header
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	client, err := stripeinternal.NewClient("sk_test_123", discardLogger())
	require.NoError(t, err)

	payload, header := signedEvent(t, testWebhookSecret)

	ev, err := client.VerifyWebhook(payload, header, testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_test_webhook", ev.ID)
	assert.Equal(t, stripeinternal.EventCheckoutSessionCompleted, ev.Type)

	s, err := stripeinternal.ExtractCheckoutSession(ev)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", s.ID)
}

func TestVerifyWebhook_WrongSecretFails(t *testing.T) {
	client, err := stripeinternal.NewClient("sk_test_123", discardLogger())
	require.NoError(t, err)

	payload, header := signedEvent(t, "whsec_someone_else")

	_, err = client.VerifyWebhook(payload, header, testWebhookSecret)
	assert.Error(t, err)
}

func TestVerifyWebhook_TamperedBodyFails(t *testing.T) {
	client, err := stripeinternal.NewClient("sk_test_123", discardLogger())
	require.NoError(t, err)

	payload, header := signedEvent(t, testWebhookSecret)
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '

	_, err = client.VerifyWebhook(tampered, header, testWebhookSecret)
	assert.Error(t, err)
}

func TestVerifyWebhook_MissingHeaderFails(t *testing.T) {
	client, err := stripeinternal.NewClient("sk_test_123", discardLogger())
	require.NoError(t, err)

	payload, _ := signedEvent(t, testWebhookSecret)

	_, err = client.VerifyWebhook(payload, "", testWebhookSecret)
	assert.Error(t, err)
}

// ─── GetCheckoutSession ───────────────────────────────────────────────────────

func newBackendClient(t *testing.T, h http.HandlerFunc) stripeinternal.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL:               stripego.String(srv.URL),
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelNull},
	})
	client, err := stripeinternal.NewClientWithBackend("sk_test_123", backend)
	require.NoError(t, err)
	return client
}

func TestGetCheckoutSession_Paid(t *testing.T) {
	client := newBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
  "id": "cs_test_123",
  "object": "checkout.session",
  "payment_status": "paid",
  "amount_total": 2000,
  "customer_details": {"email": "buyer@example.com"}
}`)
	})

	s, err := client.GetCheckoutSession(context.Background(), "cs_test_123")
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", s.ID)
	assert.True(t, s.Paid())
	assert.Equal(t, "buyer@example.com", s.CustomerEmail)
	assert.EqualValues(t, 2000, s.AmountTotal)
}

func TestGetCheckoutSession_NotFoundReturnsError(t *testing.T) {
	client := newBackendClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"No such checkout.session: 'cs_test_missing'"}}`)
	})

	_, err := client.GetCheckoutSession(context.Background(), "cs_test_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cs_test_missing")
}
