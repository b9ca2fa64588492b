package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"camphub-be/internal/domain"

	"go.uber.org/zap"
)

// WebhookNotifier posts notification events to a configured webhook. The
// delivery service behind the webhook owns email/SMS transport.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type notificationEvent struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

func (n *WebhookNotifier) NotifyApplicationReceived(ctx context.Context, camp *domain.Camp, applicant *domain.ApplicantProfile, app *domain.Application) error {
	payload := map[string]any{
		"applicationId": app.ID,
		"status":        app.Status,
	}
	if camp != nil {
		payload["campId"] = camp.ID
		payload["campName"] = camp.Name
	}
	if applicant != nil {
		payload["applicantEmail"] = applicant.Email
		payload["applicantName"] = fmt.Sprintf("%s %s", applicant.FirstName, applicant.LastName)
	}
	return n.post(ctx, "application.received", payload)
}

func (n *WebhookNotifier) NotifyStatusChanged(ctx context.Context, app *domain.Application, applicant *domain.ApplicantProfile, camp *domain.Camp, status domain.Status) error {
	payload := map[string]any{
		"applicationId": app.ID,
		"status":        status,
	}
	if camp != nil {
		payload["campName"] = camp.Name
	}
	if applicant != nil {
		payload["applicantEmail"] = applicant.Email
	}
	return n.post(ctx, "application.status_changed", payload)
}

func (n *WebhookNotifier) NotifyInvite(ctx context.Context, recipient, method string, camp *domain.Camp, senderID, link, message string) error {
	payload := map[string]any{
		"recipient": recipient,
		"method":    method,
		"senderId":  senderID,
		"link":      link,
		"message":   message,
	}
	if camp != nil {
		payload["campId"] = camp.ID
		payload["campName"] = camp.Name
	}
	return n.post(ctx, "invite.send", payload)
}

func (n *WebhookNotifier) post(ctx context.Context, eventType string, payload map[string]any) error {
	if n.url == "" {
		n.logger.Debug("notification webhook not configured, skipping",
			zap.String("event", eventType))
		return nil
	}

	body, err := json.Marshal(notificationEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
