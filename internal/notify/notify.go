// Package notify delivers post-run summaries to an external channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/eventcrawl/internal/logger"
)

// Sink receives human-readable run summaries. Delivery failures must not
// affect the run outcome; implementations log and swallow errors.
type Sink interface {
	Notify(ctx context.Context, text string)
}

// NoopSink discards all notifications. Used when no webhook is configured.
type NoopSink struct{}

// Notify does nothing.
func (NoopSink) Notify(context.Context, string) {}

// SlackSink posts summaries to a Slack incoming webhook.
type SlackSink struct {
	webhookURL string
	client     *http.Client
	log        logger.Interface
}

// NewSlackSink creates a Slack sink for the given webhook URL.
func NewSlackSink(webhookURL string, log logger.Interface) *SlackSink {
	return &SlackSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Notify posts the text as a Slack message. Errors are logged, never returned;
// a dropped notification is not worth failing a crawl over.
func (s *SlackSink) Notify(ctx context.Context, text string) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		s.log.Error("Failed to encode Slack payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		s.log.Error("Failed to build Slack request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("Failed to deliver Slack notification", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("Slack webhook rejected notification", "status", resp.StatusCode)
	}
}

// FromWebhookURL returns a Slack sink when a URL is configured, otherwise a
// no-op sink.
func FromWebhookURL(webhookURL string, log logger.Interface) Sink {
	if webhookURL == "" {
		return NoopSink{}
	}
	return NewSlackSink(webhookURL, log)
}

// CrawlMessage formats a crawl summary for delivery. A nil queueDepth omits
// the backlog sentence; the summary still goes out when the depth query fails.
func CrawlMessage(venueName string, processed, skipped, newLinks int, queueDepth *int) string {
	msg := fmt.Sprintf(
		"Crawled %s: %d events processed, %d skipped, %d new links.",
		venueName, processed, skipped, newLinks,
	)
	if queueDepth != nil {
		msg += fmt.Sprintf(" %d venues still due.", *queueDepth)
	}
	return msg
}
