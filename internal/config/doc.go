// Package config loads, validates, and normalizes marquee configuration.
//
// Configuration is TOML with sane defaults for every value; only the Plex
// connection settings are required. Secrets may be supplied through the
// MARQUEE_PLEX_TOKEN and MARQUEE_API_TOKEN environment variables instead of
// the config file.
package config
