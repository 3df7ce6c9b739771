package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Relay is the outbound delivery contract. Implementations are fire-and-forget
// beyond the error signal; no response payload is interpreted.
type Relay interface {
	SendEmail(ctx context.Context, barbershopID uint, payload map[string]interface{}) error
	SendWhatsApp(ctx context.Context, barbershopID uint, phone, message string) error
}

// HTTPRelay posts to the external automation-tool webhooks. An empty URL for a
// channel makes that channel unconfigured (ErrChannelUnconfigured), which the
// dispatcher downgrades to a logged no-op.
type HTTPRelay struct {
	EmailURL    string
	WhatsAppURL string
	IsTest      bool

	client *http.Client
}

var ErrChannelUnconfigured = fmt.Errorf("relay channel not configured")

func NewHTTPRelay(emailURL, whatsappURL string, isTest bool) *HTTPRelay {
	return &HTTPRelay{
		EmailURL:    emailURL,
		WhatsAppURL: whatsappURL,
		IsTest:      isTest,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *HTTPRelay) SendEmail(ctx context.Context, barbershopID uint, payload map[string]interface{}) error {
	if r.EmailURL == "" {
		return ErrChannelUnconfigured
	}
	body := map[string]interface{}{
		"barbershop_id": barbershopID,
		"payload":       payload,
		"is_test":       r.IsTest,
	}
	return r.post(ctx, r.EmailURL, body)
}

func (r *HTTPRelay) SendWhatsApp(ctx context.Context, barbershopID uint, phone, message string) error {
	if r.WhatsAppURL == "" {
		return ErrChannelUnconfigured
	}
	body := map[string]interface{}{
		"barbershop_id": barbershopID,
		"phone":         phone,
		"message":       message,
		"is_test":       r.IsTest,
	}
	return r.post(ctx, r.WhatsAppURL, body)
}

func (r *HTTPRelay) post(ctx context.Context, url string, body map[string]interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
