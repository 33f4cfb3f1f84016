package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
)

func validConfig() config.Config {
	cfg := config.Default()
	cfg.Plex.URL = "http://127.0.0.1:32400"
	cfg.Plex.Token = "token"
	return cfg
}

func TestDefaultValidatesWithPlexSettings(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingPlex(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing plex.url")
	}
	if !strings.Contains(err.Error(), "plex.url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		expect string
	}{
		{"similarity above one", func(c *config.Config) { c.Matching.MinSimilarity = 1.5 }, "min_similarity"},
		{"zero max results", func(c *config.Config) { c.Matching.MaxResults = 0 }, "max_results"},
		{"title bounds inverted", func(c *config.Config) { c.Matching.MaxTitleLength = 1 }, "max_title_length"},
		{"zero window", func(c *config.Config) { c.RateLimit.WindowSeconds = 0 }, "window_seconds"},
		{"zero max requests", func(c *config.Config) { c.RateLimit.MaxRequests = 0 }, "max_requests"},
		{"zero options", func(c *config.Config) { c.Selection.MaxOptions = 0 }, "max_options"},
		{"zero timeout", func(c *config.Config) { c.Selection.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"empty bind", func(c *config.Config) { c.Paths.APIBind = "" }, "api_bind"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.expect) {
				t.Fatalf("error %v does not mention %q", err, tc.expect)
			}
		})
	}
}

func TestLoadParsesFileAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
log_dir = "` + filepath.Join(dir, "logs") + `"

[plex]
url = "http://plex.local:32400/"
token = "secret"

[rate_limit]
max_requests = 3
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Plex.URL != "http://plex.local:32400" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Plex.URL)
	}
	if cfg.RateLimit.MaxRequests != 3 {
		t.Fatalf("expected override, got %d", cfg.RateLimit.MaxRequests)
	}
	if cfg.RateLimit.WindowSeconds != 60 {
		t.Fatalf("expected default window, got %d", cfg.RateLimit.WindowSeconds)
	}
	if cfg.Matching.MinSimilarity != 0.5 {
		t.Fatalf("expected default similarity threshold, got %v", cfg.Matching.MinSimilarity)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[plex]
url = "http://plex.local:32400"
token = "from-file"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MARQUEE_PLEX_TOKEN", "from-env")
	t.Setenv("MARQUEE_API_TOKEN", "api-env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Plex.Token != "from-env" {
		t.Fatalf("expected env token, got %q", cfg.Plex.Token)
	}
	if cfg.Paths.APIToken != "api-env" {
		t.Fatalf("expected env api token, got %q", cfg.Paths.APIToken)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[plex]") {
		t.Fatal("sample config missing [plex] section")
	}
}
