// Package notify delivers deploy events to external systems.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkpress/internal/retry"
	"inkpress/internal/server/config"
	"inkpress/internal/types"
	"inkpress/internal/version"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventDeployCompleted is sent after a batch deploy created a commit
const EventDeployCompleted = "deploy.completed"

// WebhookNotifier posts signed JSON events to a configured URL
type WebhookNotifier struct {
	config *config.WebhookConfig
	retry  *retry.Config
	logger *zap.Logger
	client *http.Client
}

// WebhookPayload represents the standard webhook payload structure
type WebhookPayload struct {
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(cfg *config.WebhookConfig, logger *zap.Logger) *WebhookNotifier {
	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	return &WebhookNotifier{
		config: cfg,
		retry: &retry.Config{
			Enable:      cfg.MaxRetries > 1,
			Attempts:    cfg.MaxRetries,
			Interval:    time.Second,
			Multiplier:  2,
			MaxInterval: 30 * time.Second,
		},
		logger: logger.Named("webhook"),
		client: client,
	}
}

// NotifyDeploy sends a deploy.completed event
func (w *WebhookNotifier) NotifyDeploy(ctx context.Context, event types.DeployEvent) error {
	return w.send(ctx, WebhookPayload{
		EventType: EventDeployCompleted,
		EventID:   uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Data:      event,
	})
}

func (w *WebhookNotifier) send(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	signature := ""
	if w.config.Secret != "" {
		signature = calculateSignature(data, []byte(w.config.Secret))
	}

	err = retry.Execute(ctx, w.retry, w.logger, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(data))
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", version.UserAgent("webhook"))
		req.Header.Set("X-Inkpress-Event", payload.EventType)
		req.Header.Set("X-Inkpress-Delivery", payload.EventID)
		if signature != "" {
			req.Header.Set("X-Inkpress-Signature", "sha256="+signature)
		}
		for k, v := range w.config.Headers {
			req.Header.Set(k, v)
		}

		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return retry.Permanent(fmt.Errorf("webhook request failed with status %d", resp.StatusCode))
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.logger.Debug("Webhook delivered",
		zap.String("event", payload.EventType),
		zap.String("event_id", payload.EventID))
	return nil
}

func calculateSignature(payload []byte, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
