package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/config"
	"marquee/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRequestSubmitted, notifications.Payload{"title": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "request submitted",
			event: notifications.EventRequestSubmitted,
			payload: notifications.Payload{
				"requester": "alice",
				"title":     "Iron Man",
				"year":      "2008",
				"summary":   "Billionaire builds a suit.",
			},
			expectTitle:   "Marquee - Movie Request",
			expectMessage: "🎬 Movie request from alice: Iron Man (2008)\nBillionaire builds a suit.",
			expectTags:    "marquee,request,submitted",
		},
		{
			name:  "request unmatched",
			event: notifications.EventRequestUnmatched,
			payload: notifications.Payload{
				"requester": "bob",
				"title":     "Nonexistent Movie XYZ",
			},
			expectTitle:   "Marquee - Movie Request",
			expectMessage: "Movie request from bob: Nonexistent Movie XYZ (not found)",
			expectTags:    "marquee,request,unmatched",
		},
		{
			name:  "selection confirmed",
			event: notifications.EventSelectionConfirmed,
			payload: notifications.Payload{
				"requester": "carol",
				"title":     "Iron Man 2",
				"year":      "2010",
			},
			expectTitle:   "Marquee - Movie Request",
			expectMessage: "🎬 Movie request from carol: Iron Man 2 (2010)",
			expectTags:    "marquee,request,selected",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "search",
				"error":   "connection refused",
			},
			expectTitle:    "Marquee - Error",
			expectMessage:  "❌ Error with search: connection refused",
			expectTags:     "marquee,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			payload:        nil,
			expectTitle:    "Marquee - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "marquee,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotTitle, gotBody, gotTags, gotPriority string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				gotTitle = r.Header.Get("Title")
				gotBody = string(body)
				gotTags = r.Header.Get("Tags")
				gotPriority = r.Header.Get("Priority")
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			svc := notifications.NewService(&cfg)

			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("publish: %v", err)
			}
			if gotTitle != tc.expectTitle {
				t.Fatalf("title = %q, want %q", gotTitle, tc.expectTitle)
			}
			if gotBody != tc.expectMessage {
				t.Fatalf("message = %q, want %q", gotBody, tc.expectMessage)
			}
			if gotTags != tc.expectTags {
				t.Fatalf("tags = %q, want %q", gotTags, tc.expectTags)
			}
			if gotPriority != tc.expectPriority {
				t.Fatalf("priority = %q, want %q", gotPriority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceRespectsToggles(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Requests = false
	svc := notifications.NewService(&cfg)

	if err := svc.Publish(context.Background(), notifications.EventRequestSubmitted, notifications.Payload{"title": "Iron Man"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if calls != 0 {
		t.Fatalf("disabled event still sent %d notifications", calls)
	}
}

func TestNtfyServiceReportsHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err == nil {
		t.Fatal("expected error from failing ntfy endpoint")
	}
}
