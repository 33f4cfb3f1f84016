package plex

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"marquee/internal/config"
	"marquee/internal/match"
	"marquee/internal/services"
)

const userAgent = "Marquee-Go/0.1.0"

// movieType is the Plex metadata type filter for movies.
const movieType = "1"

// Client searches a single Plex movie library section.
type Client struct {
	baseURL string
	token   string
	library string
	client  *http.Client

	mu         sync.Mutex
	sectionKey string
}

var _ match.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// NewClient builds a Plex search client from configuration.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("plex: config required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Plex.URL), "/")
	token := strings.TrimSpace(cfg.Plex.Token)
	if baseURL == "" || token == "" {
		return nil, fmt.Errorf("plex: url and token required")
	}

	timeout := time.Duration(cfg.Plex.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		token:   token,
		library: cfg.Plex.Library,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search queries the configured library section for movies matching the
// title and maps them into candidates in the provider's return order.
func (c *Client) Search(ctx context.Context, query string) ([]match.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	key, err := c.ensureSectionKey(ctx)
	if err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/library/sections/%s/all?type=%s&title=%s",
		c.baseURL, key, movieType, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "plex", "search", "build request", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "plex", "search", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, services.Wrap(services.ErrProvider, "plex", "search",
			fmt.Sprintf("plex returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	type metadata struct {
		RatingKey string `json:"ratingKey"`
		Title     string `json:"title"`
		Year      int    `json:"year"`
		Summary   string `json:"summary"`
	}
	type mediaContainer struct {
		Metadata []metadata `json:"Metadata"`
	}
	var payload struct {
		MediaContainer mediaContainer `json:"MediaContainer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrProvider, "plex", "search", "decode response", err)
	}

	candidates := make([]match.Candidate, 0, len(payload.MediaContainer.Metadata))
	for _, item := range payload.MediaContainer.Metadata {
		if item.Title == "" {
			continue
		}
		candidates = append(candidates, match.Candidate{
			ID:      item.RatingKey,
			Title:   item.Title,
			Year:    item.Year,
			Summary: item.Summary,
		})
	}
	return candidates, nil
}

func (c *Client) ensureSectionKey(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sectionKey != "" {
		return c.sectionKey, nil
	}

	sectionsURL := fmt.Sprintf("%s/library/sections", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sectionsURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "plex", "sections", "build request", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "plex", "sections", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", services.Wrap(services.ErrProvider, "plex", "sections",
			fmt.Sprintf("plex returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	type directory struct {
		Key   string `xml:"key,attr"`
		Title string `xml:"title,attr"`
	}
	type mediaContainer struct {
		Directories []directory `xml:"Directory"`
	}

	var container mediaContainer
	if err := xml.NewDecoder(resp.Body).Decode(&container); err != nil {
		return "", services.Wrap(services.ErrProvider, "plex", "sections", "decode response", err)
	}

	for _, dir := range container.Directories {
		if dir.Key == "" || dir.Title == "" {
			continue
		}
		if strings.EqualFold(dir.Title, c.library) {
			c.sectionKey = dir.Key
			return c.sectionKey, nil
		}
	}
	return "", services.Wrap(services.ErrProvider, "plex", "sections",
		fmt.Sprintf("plex library %q not found", c.library), nil)
}
