// Package email defines the interface for the fulfillment email, renders its
// HTML body, and provides a Resend-backed implementation.
package email

import "context"

// DownloadLinksParams holds the data for the post-purchase download email.
type DownloadLinksParams struct {
	To         string // recipient email address
	AmountPaid string // pre-formatted, e.g. "$20.00"
	OrderID    string // Checkout Session id
	Year       int    // copyright year stamped in the footer
}

// Sender is the interface the fulfillment flow uses to send email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendDownloadLinks sends the "your download links" email with both
	// installer links and the order receipt.
	SendDownloadLinks(ctx context.Context, p DownloadLinksParams) error
}
