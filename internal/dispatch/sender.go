// Package dispatch delivers rendered messages through an ESP-style HTTP
// transmission API. It implements the send loop's Sender contract; the
// SMTP-level mechanics live on the provider's side of that API.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/outreach-tracker/internal/domain"
	"github.com/ignite/outreach-tracker/internal/pkg/httpretry"
)

// HTTPSender posts messages to {baseURL}/messages as JSON. Transient
// provider errors are retried with backoff by the underlying client; a
// definitive 4xx is reported as a failed SendResult, not an error.
type HTTPSender struct {
	baseURL string
	apiKey  string
	client  httpretry.HTTPDoer
}

// NewHTTPSender creates a sender for the given provider endpoint. The
// request path goes through a retrying client with exponential backoff.
func NewHTTPSender(baseURL, apiKey string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 3),
	}
}

type transmissionRequest struct {
	To         string `json:"to"`
	ToName     string `json:"to_name,omitempty"`
	Subject    string `json:"subject"`
	HTML       string `json:"html"`
	CampaignID string `json:"campaign_id"`
	TrackingID string `json:"tracking_id"`
}

type transmissionResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// Send delivers a single message. A nil error with Success=false means the
// provider definitively rejected the message; the send loop counts it as a
// failure and moves on.
func (s *HTTPSender) Send(ctx context.Context, msg *domain.OutboundMessage) (*domain.SendResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("dispatch: api key not configured")
	}

	payload, err := json.Marshal(transmissionRequest{
		To:         msg.To,
		ToName:     msg.ToName,
		Subject:    msg.Subject,
		HTML:       msg.HTML,
		CampaignID: msg.CampaignID,
		TrackingID: msg.TrackingID,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch: encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("dispatch: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatch: sending request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return &domain.SendResult{
			Success: false,
			SentAt:  time.Now().UTC(),
			Error:   fmt.Sprintf("provider error %d: %s", resp.StatusCode, string(body)),
		}, nil
	}

	var result transmissionResponse
	json.Unmarshal(body, &result)

	return &domain.SendResult{
		Success:   true,
		MessageID: result.ID,
		SentAt:    time.Now().UTC(),
	}, nil
}
