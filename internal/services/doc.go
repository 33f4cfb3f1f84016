// Package services provides shared plumbing for marquee's request-handling
// components: sentinel error markers used to classify failures, and context
// helpers that carry caller identity and correlation IDs across the workflow.
package services
