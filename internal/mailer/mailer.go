// internal/mailer/mailer.go
//
// Mail delivery collaborator.
//
// Context
// -------
// The cadence engine hands a fully resolved Message to a Mailer and records
// the outcome; it never builds HTTP requests itself.  Two implementations:
//
//   - Brevo     – transactional-email HTTP API (POST /v3/smtp/email), the
//     provider the group actually uses.  Template variables ride in the
//     `params` object and the template is referenced by name.
//   - DryRun    – logs the message and returns a synthetic delivery ID.
//     Used by the admin "test run" button and in development.
//
// A provider failure is reported to the caller but must not roll back any
// Lunch or token state committed before the send; re-running the job resends
// against the existing rows.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recipient is one addressee.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is one fully resolved send: a named template, its substitution
// parameters, and the recipient list.
type Message struct {
	Template string
	Subject  string
	To       []Recipient
	Params   map[string]string
}

// Mailer delivers one message and returns the provider's delivery ID.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

//
// Brevo implementation
//

const defaultEndpoint = "https://api.brevo.com/v3/smtp/email"

// Brevo sends through the Brevo transactional API.
type Brevo struct {
	apiKey   string
	endpoint string
	from     Recipient
	client   *http.Client
}

// NewBrevo builds a Brevo mailer.  endpoint may be empty for the production
// API host.
func NewBrevo(apiKey, endpoint string, from Recipient) *Brevo {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Brevo{
		apiKey:   apiKey,
		endpoint: endpoint,
		from:     from,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type brevoRequest struct {
	Sender      Recipient         `json:"sender"`
	To          []Recipient       `json:"to"`
	Subject     string            `json:"subject"`
	Tags        []string          `json:"tags,omitempty"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

// Send posts the message and returns Brevo's message ID.
func (b *Brevo) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(brevoRequest{
		Sender:      b.from,
		To:          msg.To,
		Subject:     msg.Subject,
		Tags:        []string{msg.Template},
		HTMLContent: renderFallback(msg),
		Params:      msg.Params,
	})
	if err != nil {
		return "", fmt.Errorf("mailer: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("mailer: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailer: send %q: %w", msg.Template, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("mailer: send %q: provider status %d: %s",
			msg.Template, resp.StatusCode, snippet)
	}

	var out brevoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("mailer: decode response: %w", err)
	}
	return out.MessageID, nil
}

// renderFallback produces a minimal HTML body so the message is deliverable
// even when the named template is missing on the provider side.
func renderFallback(msg Message) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<html><body><h2>%s</h2><ul>", msg.Subject)
	for k, v := range msg.Params {
		fmt.Fprintf(&buf, "<li>%s: %s</li>", k, v)
	}
	buf.WriteString("</ul></body></html>")
	return buf.String()
}

//
// DryRun implementation
//

// DryRun logs instead of sending.  Delivery IDs are synthetic but unique so
// email-log rows stay distinguishable.
type DryRun struct{}

// Send logs the would-be delivery.
func (DryRun) Send(_ context.Context, msg Message) (string, error) {
	id := "dry-run-" + uuid.NewString()
	zap.S().Infow("dry-run email",
		"template", msg.Template,
		"subject", msg.Subject,
		"recipients", len(msg.To),
		"delivery_id", id,
	)
	return id, nil
}
