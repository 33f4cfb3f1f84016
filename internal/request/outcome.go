package request

import (
	"fmt"
	"time"

	"marquee/internal/match"
)

// Status classifies how a workflow invocation resolved.
type Status string

const (
	// StatusRateLimited means admission was denied; nothing else ran.
	StatusRateLimited Status = "rate_limited"
	// StatusInvalid means the title failed validation.
	StatusInvalid Status = "invalid"
	// StatusNoMatch means the search produced no surviving candidates.
	StatusNoMatch Status = "no_match"
	// StatusFound means a query returned candidates to show.
	StatusFound Status = "found"
	// StatusSubmitted means a request was confirmed and the admin notified.
	StatusSubmitted Status = "submitted"
	// StatusNeedsSelection means a request matched several movies and a
	// selection session is open.
	StatusNeedsSelection Status = "needs_selection"
	// StatusRejected means a selection attempt was refused (wrong owner,
	// expired session, or invalid option).
	StatusRejected Status = "rejected"
	// StatusError means an unexpected internal failure was absorbed.
	StatusError Status = "error"
)

// Outcome is the requester-facing result of one workflow invocation.
type Outcome struct {
	Status     Status
	Message    string
	Candidates []match.ScoredCandidate
	Session    *SessionOffer
}

// SessionOffer describes an open disambiguation session.
type SessionOffer struct {
	ID        string
	Options   []match.Candidate
	ExpiresAt time.Time
}

// DisplayTitle renders a candidate as "Title (Year)", omitting an unknown year.
func DisplayTitle(c match.Candidate) string {
	if c.Year > 0 {
		return fmt.Sprintf("%s (%d)", c.Title, c.Year)
	}
	return c.Title
}

func genericFailure() Outcome {
	return Outcome{
		Status:  StatusError,
		Message: "Something went wrong. Please try again later.",
	}
}
