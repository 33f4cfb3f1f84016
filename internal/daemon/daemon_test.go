package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marquee/internal/api"
	"marquee/internal/logging"
	"marquee/internal/match"
	"marquee/internal/request"
	"marquee/internal/testsupport"
)

func stubSearcher(candidates ...match.Candidate) match.Searcher {
	return match.SearcherFunc(func(context.Context, string) ([]match.Candidate, error) {
		return candidates, nil
	})
}

func newTestDaemon(t *testing.T, searcher match.Searcher, opts ...testsupport.ConfigOption) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	d, err := New(cfg, logging.NewNop(), searcher)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d
}

func TestDaemonLifecycle(t *testing.T) {
	d := newTestDaemon(t, stubSearcher(
		match.Candidate{ID: "1", Title: "Iron Man", Year: 2008},
		match.Candidate{ID: "2", Title: "Iron Man 2", Year: 2010},
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	client := api.NewClient("http://"+d.APIAddr(), "")

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running {
		t.Fatal("daemon reports not running")
	}

	found, err := client.Query(ctx, "alice", "Iron Man 2")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if found.Status != string(request.StatusFound) {
		t.Fatalf("query status = %q, want %q", found.Status, request.StatusFound)
	}

	ambiguous, err := client.Request(ctx, "alice", "Iron Man")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if ambiguous.Status != string(request.StatusNeedsSelection) {
		t.Fatalf("request status = %q, want %q", ambiguous.Status, request.StatusNeedsSelection)
	}
	if ambiguous.Session == nil {
		t.Fatal("ambiguous request returned no session")
	}

	chosen, err := client.Select(ctx, "alice", ambiguous.Session.ID, 0)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if chosen.Status != string(request.StatusSubmitted) {
		t.Fatalf("select status = %q, want %q", chosen.Status, request.StatusSubmitted)
	}

	scores, err := client.Scores(ctx, "Iron Man")
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(scores.Results) == 0 {
		t.Fatal("scores returned no results")
	}
	if scores.Results[0].Score != 1.0 {
		t.Fatalf("top score = %v, want 1.0", scores.Results[0].Score)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	d := newTestDaemon(t, stubSearcher())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	second, err := New(d.cfg, logging.NewNop(), stubSearcher())
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second daemon acquired the lock while the first was running")
	}
}

func TestAPIServerRequiresBearerToken(t *testing.T) {
	d := newTestDaemon(t, stubSearcher(), testsupport.WithAPIToken("secret"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	anonymous := api.NewClient("http://"+d.APIAddr(), "")
	if _, err := anonymous.Status(ctx); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("anonymous status error = %v, want 401", err)
	}

	authorized := api.NewClient("http://"+d.APIAddr(), "secret")
	if _, err := authorized.Status(ctx); err != nil {
		t.Fatalf("authorized status: %v", err)
	}
}

func TestHandleQueryRejectsMissingUser(t *testing.T) {
	d := newTestDaemon(t, stubSearcher())

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{"title":"Iron Man"}`))
	w := httptest.NewRecorder()
	d.api.handleQuery(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleScoresRejectsInvalidTitle(t *testing.T) {
	d := newTestDaemon(t, stubSearcher())

	req := httptest.NewRequest(http.MethodGet, "/api/scores?title=", nil)
	w := httptest.NewRecorder()
	d.api.handleScores(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleStatusRejectsWrongMethod(t *testing.T) {
	d := newTestDaemon(t, stubSearcher())

	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	w := httptest.NewRecorder()
	d.api.handleStatus(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload["error"] == "" {
		t.Fatal("error payload missing detail")
	}
}
