package rsvp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	EventSubmitted  = "rsvp.submitted"
	SignatureHeader = "X-Invitation-Signature"
)

var ErrWebhookStatus = errors.New("webhook returned an error status")

// DefaultBackoff is the pause before each retry. The guest is waiting on the
// response, so the whole schedule stays within a few seconds.
var DefaultBackoff = []time.Duration{
	500 * time.Millisecond,
	2 * time.Second,
}

// Event is the JSON envelope posted to the webhook.
type Event struct {
	EventType string     `json:"event_type"`
	EventID   string     `json:"event_id"`
	Timestamp string     `json:"timestamp"`
	Data      Submission `json:"data"`
}

// WebhookSubmitter forwards submissions to an HTTP endpoint, signing the body
// with HMAC-SHA256 when Secret is set.
type WebhookSubmitter struct {
	URL     string
	Secret  string
	Client  *http.Client
	Backoff []time.Duration
}

func (w *WebhookSubmitter) Submit(ctx context.Context, s Submission) error {
	payload, err := json.Marshal(Event{
		EventType: EventSubmitted,
		EventID:   uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      s,
	})
	if err != nil {
		return fmt.Errorf("marshal rsvp event: %w", err)
	}

	backoff := w.Backoff
	if backoff == nil {
		backoff = DefaultBackoff
	}

	for attempt := 1; ; attempt++ {
		status, preview, err := w.post(ctx, payload)
		if err == nil {
			slog.Info("rsvp webhook delivered", "id", s.ID, "status", status, "attempt", attempt)
			return nil
		}
		if attempt > len(backoff) || ctx.Err() != nil {
			slog.Warn("rsvp webhook exhausted", "id", s.ID, "attempts", attempt, "error", err)
			return fmt.Errorf("deliver rsvp %s: %w", s.ID, err)
		}
		wait := backoff[attempt-1]
		slog.Warn("rsvp webhook failed, will retry", "id", s.ID, "attempt", attempt,
			"status", status, "response", preview, "retry_in", wait, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("deliver rsvp %s: %w", s.ID, ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (w *WebhookSubmitter) post(ctx context.Context, payload []byte) (status int, preview string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(w.Secret, payload))
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
	if resp.StatusCode >= 400 {
		return resp.StatusCode, string(body), fmt.Errorf("%w: %d", ErrWebhookStatus, resp.StatusCode)
	}
	return resp.StatusCode, string(body), nil
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
