package plex_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/config"
	"marquee/internal/services"
	"marquee/internal/services/plex"
)

const sectionsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="2">
  <Directory key="1" type="movie" title="Movies"/>
  <Directory key="2" type="show" title="TV Shows"/>
</MediaContainer>`

const searchJSON = `{"MediaContainer":{"size":2,"Metadata":[
  {"ratingKey":"101","title":"Iron Man","year":2008,"summary":"Billionaire builds a suit."},
  {"ratingKey":"102","title":"Iron Man 2","year":2010,"summary":"He does it again."}
]}}`

func newTestServer(t *testing.T, searchStatus int) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.Header.Get("X-Plex-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/library/sections":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(sectionsXML))
		case "/library/sections/1/all":
			if searchStatus != http.StatusOK {
				w.WriteHeader(searchStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(searchJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &paths
}

func newTestClient(t *testing.T, serverURL string) *plex.Client {
	t.Helper()
	cfg := config.Default()
	cfg.Plex.URL = serverURL
	cfg.Plex.Token = "secret"
	cfg.Plex.Library = "Movies"
	client, err := plex.NewClient(&cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSearchResolvesSectionAndMapsCandidates(t *testing.T) {
	server, paths := newTestServer(t, http.StatusOK)
	client := newTestClient(t, server.URL)

	candidates, err := client.Search(context.Background(), "Iron Man")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	first := candidates[0]
	if first.ID != "101" || first.Title != "Iron Man" || first.Year != 2008 {
		t.Fatalf("unexpected candidate: %+v", first)
	}

	// The section key is cached after the first lookup.
	if _, err := client.Search(context.Background(), "Iron Man"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	sectionLookups := 0
	for _, p := range *paths {
		if p == "/library/sections" {
			sectionLookups++
		}
	}
	if sectionLookups != 1 {
		t.Fatalf("expected 1 section lookup, got %d", sectionLookups)
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	server, paths := newTestServer(t, http.StatusOK)
	client := newTestClient(t, server.URL)

	candidates, err := client.Search(context.Background(), "   ")
	if err != nil || candidates != nil {
		t.Fatalf("expected no-op for empty query, got %v %v", candidates, err)
	}
	if len(*paths) != 0 {
		t.Fatal("empty query should not hit the server")
	}
}

func TestSearchReportsProviderErrors(t *testing.T) {
	server, _ := newTestServer(t, http.StatusInternalServerError)
	client := newTestClient(t, server.URL)

	_, err := client.Search(context.Background(), "Iron Man")
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestSearchUnknownLibrary(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Plex.URL = server.URL
	cfg.Plex.Token = "secret"
	cfg.Plex.Library = "Anime"
	client, err := plex.NewClient(&cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Search(context.Background(), "Akira")
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider error for unknown library, got %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := config.Default()
	if _, err := plex.NewClient(&cfg); err == nil {
		t.Fatal("expected error without url/token")
	}
}
