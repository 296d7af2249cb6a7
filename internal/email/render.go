package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
)

const (
	// ProductName appears in the subject, intro line, and receipt.
	ProductName = "Carbonator"

	// BrandName is the seller shown in the header and footer.
	BrandName = "Carbinated Audio"

	// DefaultSupportEmail is printed in the footer when none is configured.
	DefaultSupportEmail = "support@carbinatedaudio.com"
)

// DownloadEmailData is everything the download email shows besides the
// release catalog.
type DownloadEmailData struct {
	Email        string
	AmountPaid   string
	OrderID      string
	Year         int
	SupportEmail string
}

// RenderDownloadEmail returns the complete HTML body of the download email.
// It makes no external calls; the same inputs always give the same output.
func RenderDownloadEmail(catalog release.Catalog, d DownloadEmailData) (string, error) {
	if d.SupportEmail == "" {
		d.SupportEmail = DefaultSupportEmail
	}

	view := struct {
		DownloadEmailData
		Brand      string
		Product    string
		Version    string
		MacURL     string
		WindowsURL string
	}{
		DownloadEmailData: d,
		Brand:             BrandName,
		Product:           ProductName,
		Version:           catalog.Version(),
		MacURL:            catalog.URL(release.PlatformMac),
		WindowsURL:        catalog.URL(release.PlatformWindows),
	}

	var buf bytes.Buffer
	if err := downloadEmailTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("email: render download email: %w", err)
	}
	return buf.String(), nil
}

// DownloadEmailSubject is the subject line for the download email.
func DownloadEmailSubject() string {
	return fmt.Sprintf("Your %s Download Links", ProductName)
}

var downloadEmailTmpl = template.Must(template.New("download").Parse(downloadEmailHTML))

const downloadEmailHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#0d0a1a;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="background-color:#0d0a1a;padding:40px 20px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" style="max-width:600px;width:100%;">
          <tr>
            <td align="center" style="padding-bottom:32px;">
              <span style="font-size:28px;font-weight:800;color:#ffffff;">{{.Brand}}</span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#1a1430;border-radius:16px;padding:40px 32px;">
              <table width="100%" cellpadding="0" cellspacing="0">
                <tr>
                  <td align="center" style="padding-bottom:24px;">
                    <div style="width:60px;height:60px;border-radius:50%;background-color:rgba(16,185,129,0.15);border:2px solid #10b981;line-height:60px;text-align:center;font-size:28px;">&#10003;</div>
                  </td>
                </tr>
              </table>

              <h1 style="color:#ffffff;font-size:24px;text-align:center;margin:0 0 8px;">Thank you for your purchase!</h1>
              <p style="color:#a09bb5;font-size:16px;text-align:center;margin:0 0 32px;">Your {{.Product}} v{{.Version}} download links are below.</p>

              <table width="100%" cellpadding="0" cellspacing="0" style="margin-bottom:32px;">
                <tr>
                  <td align="center" style="padding-bottom:12px;">
                    <a href="{{.MacURL}}" style="display:inline-block;padding:14px 32px;background:linear-gradient(135deg,#ff6b2b,#ff8c42);color:#ffffff;text-decoration:none;border-radius:8px;font-size:16px;font-weight:600;">Download for macOS (.pkg)</a>
                  </td>
                </tr>
                <tr>
                  <td align="center">
                    <a href="{{.WindowsURL}}" style="display:inline-block;padding:14px 32px;background:linear-gradient(135deg,#ff6b2b,#ff8c42);color:#ffffff;text-decoration:none;border-radius:8px;font-size:16px;font-weight:600;">Download for Windows (.zip)</a>
                  </td>
                </tr>
              </table>

              <hr style="border:none;border-top:1px solid #2a2440;margin:0 0 24px;">

              <h2 style="color:#ffffff;font-size:16px;margin:0 0 16px;">Order Details</h2>
              <table width="100%" cellpadding="0" cellspacing="0" style="font-size:14px;">
                <tr>
                  <td style="color:#a09bb5;padding:4px 0;">Product</td>
                  <td style="color:#ffffff;text-align:right;padding:4px 0;">{{.Product}} v{{.Version}}</td>
                </tr>
                <tr>
                  <td style="color:#a09bb5;padding:4px 0;">Amount</td>
                  <td style="color:#ffffff;text-align:right;padding:4px 0;">{{.AmountPaid}}</td>
                </tr>
                <tr>
                  <td style="color:#a09bb5;padding:4px 0;">Email</td>
                  <td style="color:#ffffff;text-align:right;padding:4px 0;">{{.Email}}</td>
                </tr>
                <tr>
                  <td style="color:#a09bb5;padding:4px 0;">Order ID</td>
                  <td style="color:#ffffff;text-align:right;padding:4px 0;font-size:11px;word-break:break-all;">{{.OrderID}}</td>
                </tr>
              </table>

              <hr style="border:none;border-top:1px solid #2a2440;margin:24px 0;">

              <h2 style="color:#ffffff;font-size:16px;margin:0 0 12px;">Quick Start</h2>
              <ol style="color:#a09bb5;font-size:14px;padding-left:20px;margin:0;">
                <li style="margin-bottom:8px;"><strong style="color:#ffffff;">macOS:</strong> Open the .pkg installer and choose your formats (VST3, AU, AAX, Standalone).</li>
                <li style="margin-bottom:8px;"><strong style="color:#ffffff;">Windows:</strong> Extract the .zip and copy the VST3 plugin to <code style="background:rgba(255,255,255,0.08);padding:2px 6px;border-radius:4px;">C:\Program Files\Common Files\VST3\</code></li>
                <li style="margin-bottom:8px;"><strong style="color:#ffffff;">Rescan plugins</strong> in your DAW, then drop {{.Product}} on a track.</li>
              </ol>
            </td>
          </tr>
          <tr>
            <td align="center" style="padding-top:32px;">
              <p style="color:#6b6580;font-size:12px;margin:0;">Need help? Reply to this email or contact {{.SupportEmail}}</p>
              <p style="color:#6b6580;font-size:12px;margin:8px 0 0;">&copy; {{.Year}} {{.Brand}}</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
