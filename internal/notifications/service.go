package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
)

const userAgent = "Marquee-Go/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	// EventRequestSubmitted fires when a request resolved to one movie.
	EventRequestSubmitted Event = "request_submitted"
	// EventRequestUnmatched fires when a request matched nothing in the library.
	EventRequestUnmatched Event = "request_unmatched"
	// EventSelectionConfirmed fires when a user resolved an ambiguous request.
	EventSelectionConfirmed Event = "selection_confirmed"
	// EventError fires on internal failures worth the admin's attention.
	EventError Event = "error"
	// EventTest verifies the notification channel.
	EventTest Event = "test"
)

// Payload carries the per-event fields used to format a message.
type Payload map[string]string

// Service defines the notification surface exposed to the request workflow.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		notifyRequests: cfg.Notifications.Requests,
		notifyErrors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	notifyRequests bool
	notifyErrors   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if payload == nil {
		payload = Payload{}
	}
	data, enabled := n.format(event, payload)
	if !enabled {
		return nil
	}
	return n.send(ctx, data)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	requester := strings.TrimSpace(payload["requester"])
	if requester == "" {
		requester = "unknown user"
	}
	display := displayTitle(payload)

	switch event {
	case EventRequestSubmitted:
		body := fmt.Sprintf("🎬 Movie request from %s: %s", requester, display)
		if summary := strings.TrimSpace(payload["summary"]); summary != "" {
			body = body + "\n" + summary
		}
		return message{
			title: "Marquee - Movie Request",
			body:  body,
			tags:  []string{"marquee", "request", "submitted"},
		}, n.notifyRequests
	case EventRequestUnmatched:
		return message{
			title: "Marquee - Movie Request",
			body:  fmt.Sprintf("Movie request from %s: %s (not found)", requester, display),
			tags:  []string{"marquee", "request", "unmatched"},
		}, n.notifyRequests
	case EventSelectionConfirmed:
		body := fmt.Sprintf("🎬 Movie request from %s: %s", requester, display)
		if summary := strings.TrimSpace(payload["summary"]); summary != "" {
			body = body + "\n" + summary
		}
		return message{
			title: "Marquee - Movie Request",
			body:  body,
			tags:  []string{"marquee", "request", "selected"},
		}, n.notifyRequests
	case EventError:
		detail := strings.TrimSpace(payload["error"])
		if detail == "" {
			detail = "unknown"
		}
		label := strings.TrimSpace(payload["context"])
		body := "❌ Error: " + detail
		if label != "" {
			body = "❌ Error with " + label + ": " + detail
		}
		return message{
			title:    "Marquee - Error",
			body:     body,
			tags:     []string{"marquee", "error", "alert"},
			priority: "high",
		}, n.notifyErrors
	case EventTest:
		return message{
			title:    "Marquee - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"marquee", "test"},
			priority: "low",
		}, true
	default:
		return message{
			title: "Marquee",
			body:  string(event),
			tags:  []string{"marquee"},
		}, true
	}
}

func displayTitle(payload Payload) string {
	title := strings.TrimSpace(payload["title"])
	if title == "" {
		title = "unknown title"
	}
	if year := strings.TrimSpace(payload["year"]); year != "" && year != "0" {
		return title + " (" + year + ")"
	}
	return title
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
