// Package notifications delivers admin notifications over ntfy.
//
// Delivery is fire-and-forget: failures are logged by callers, never
// retried, and never surfaced to the requester. When no topic is configured
// a noop service is returned.
package notifications
