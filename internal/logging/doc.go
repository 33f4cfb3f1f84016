// Package logging configures slog for marquee.
//
// It provides a console handler for interactive use, a JSON handler for
// machine-readable output, component loggers, and helpers that derive
// structured fields from request contexts.
package logging
