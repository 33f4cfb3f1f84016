package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("plex.url is required. Edit %s (create with 'marquee config init')", defaultPath)
	}
	if c.Plex.Token == "" {
		return errors.New("plex.token is required. Set MARQUEE_PLEX_TOKEN env var or add it to the config file")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.MinSimilarity < 0 || c.Matching.MinSimilarity > 1 {
		return errors.New("matching.min_similarity must be between 0 and 1")
	}
	if c.Matching.MaxResults < 1 {
		return errors.New("matching.max_results must be at least 1")
	}
	if c.Matching.MinTitleLength < 1 {
		return errors.New("matching.min_title_length must be at least 1")
	}
	if c.Matching.MaxTitleLength <= c.Matching.MinTitleLength {
		return errors.New("matching.max_title_length must be greater than matching.min_title_length")
	}
	if c.Matching.MaxShown < 1 {
		return errors.New("matching.max_candidates_shown must be at least 1")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.RateLimit.WindowSeconds < 1 {
		return errors.New("rate_limit.window_seconds must be at least 1")
	}
	if c.RateLimit.MaxRequests < 1 {
		return errors.New("rate_limit.max_requests must be at least 1")
	}
	return nil
}

func (c *Config) validateSelection() error {
	if c.Selection.MaxOptions < 1 {
		return errors.New("selection.max_options must be at least 1")
	}
	if c.Selection.TimeoutSeconds < 1 {
		return errors.New("selection.timeout_seconds must be at least 1")
	}
	if c.Selection.SweepIntervalSeconds < 1 {
		return errors.New("selection.sweep_interval_seconds must be at least 1")
	}
	return nil
}
