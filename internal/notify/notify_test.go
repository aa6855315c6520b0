package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/eventcrawl/internal/logger"
)

func TestSlackSinkPostsText(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewSlackSink(server.URL, logger.NewNoOp())
	sink.Notify(context.Background(), "crawl finished")

	assert.Equal(t, "crawl finished", got["text"])
}

func TestSlackSinkSwallowsDeliveryFailure(t *testing.T) {
	sink := NewSlackSink("http://127.0.0.1:0/unreachable", logger.NewNoOp())

	// Must not panic or propagate anything.
	sink.Notify(context.Background(), "crawl finished")
}

func TestFromWebhookURL(t *testing.T) {
	assert.IsType(t, NoopSink{}, FromWebhookURL("", logger.NewNoOp()))
	assert.IsType(t, &SlackSink{}, FromWebhookURL("https://hooks.example.com/x", logger.NewNoOp()))
}

func TestCrawlMessage(t *testing.T) {
	depth := 4
	msg := CrawlMessage("Warehouse", 12, 2, 30, &depth)
	assert.Contains(t, msg, "Warehouse")
	assert.Contains(t, msg, "12 events processed")
	assert.Contains(t, msg, "4 venues still due")
}

func TestCrawlMessage_UnknownQueueDepth(t *testing.T) {
	msg := CrawlMessage("Warehouse", 12, 2, 30, nil)
	assert.Contains(t, msg, "12 events processed")
	assert.NotContains(t, msg, "venues still due")
}
