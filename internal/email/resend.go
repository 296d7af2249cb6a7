package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
)

// ResendEndpoint is the Resend send-email API.
const ResendEndpoint = "https://api.resend.com/emails"

// ResendConfig configures NewResendClient. Only APIKey is required.
type ResendConfig struct {
	APIKey       string
	FromAddr     string // default "onboarding@resend.dev"
	FromName     string // default BrandName
	Subject      string // default DownloadEmailSubject()
	SupportEmail string // default DefaultSupportEmail

	// Endpoint overrides ResendEndpoint. Tests point it at httptest.
	Endpoint string

	// HTTPClient overrides the default 15s-timeout client.
	HTTPClient *http.Client
}

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey       string
	from         string // e.g. "Carbinated Audio <onboarding@resend.dev>"
	subject      string
	supportEmail string
	endpoint     string
	catalog      release.Catalog
	httpClient   *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend. An empty
// API key is rejected so misconfiguration surfaces at startup.
func NewResendClient(cfg ResendConfig, catalog release.Catalog) (Sender, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("email: resend api key is required")
	}
	if cfg.FromAddr == "" {
		cfg.FromAddr = "onboarding@resend.dev"
	}
	if cfg.FromName == "" {
		cfg.FromName = BrandName
	}
	if cfg.Subject == "" {
		cfg.Subject = DownloadEmailSubject()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = ResendEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &resendClient{
		apiKey:       cfg.APIKey,
		from:         fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddr),
		subject:      cfg.Subject,
		supportEmail: cfg.SupportEmail,
		endpoint:     cfg.Endpoint,
		catalog:      catalog,
		httpClient:   cfg.HTTPClient,
	}, nil
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Headers map[string]string `json:"headers,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`

	// Resend reports failures as a flat {statusCode, name, message} body.
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

// SendDownloadLinks renders and sends the download email.
func (c *resendClient) SendDownloadLinks(ctx context.Context, p DownloadLinksParams) error {
	html, err := RenderDownloadEmail(c.catalog, DownloadEmailData{
		Email:        p.To,
		AmountPaid:   p.AmountPaid,
		OrderID:      p.OrderID,
		Year:         p.Year,
		SupportEmail: c.supportEmail,
	})
	if err != nil {
		return err
	}

	return c.send(ctx, p.To, c.subject, html)
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

func (c *resendClient) send(ctx context.Context, to, subject, html string) error {
	reqBody := resendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		// A unique ref id per send keeps Gmail from collapsing a repeat
		// delivery into the earlier thread.
		Headers: map[string]string{"X-Entity-Ref-ID": uuid.NewString()},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed resendResponse
		if json.Unmarshal(respBytes, &parsed) == nil && parsed.Message != "" {
			return fmt.Errorf("email: Resend error %s (status %d): %s", parsed.Name, resp.StatusCode, parsed.Message)
		}
		return fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.ID == "" {
		return fmt.Errorf("email: Resend accepted the request but returned no id")
	}

	return nil
}
