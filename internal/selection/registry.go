package selection

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"marquee/internal/match"
	"marquee/internal/services"
)

// Session is an ephemeral disambiguation state bound to one requester.
// It is read-only once built; the registry owns its lifecycle.
type Session struct {
	ID        string
	Owner     string
	Options   []match.Candidate
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Registry owns all open sessions. Lookup-then-consume is atomic under one
// lock so two concurrent choices on the same session cannot both succeed.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]Session
	ttl        time.Duration
	maxOptions int
	now        func() time.Time
}

// NewRegistry constructs a registry whose sessions expire after ttl and
// offer at most maxOptions candidates.
func NewRegistry(ttl time.Duration, maxOptions int) *Registry {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxOptions < 1 {
		maxOptions = 1
	}
	return &Registry{
		sessions:   make(map[string]Session),
		ttl:        ttl,
		maxOptions: maxOptions,
		now:        time.Now,
	}
}

// Create opens a session for the owner offering a strict prefix of the
// supplied candidates, highest-ranked first.
func (r *Registry) Create(owner string, candidates []match.Candidate) Session {
	if len(candidates) > r.maxOptions {
		candidates = candidates[:r.maxOptions]
	}
	options := make([]match.Candidate, len(candidates))
	copy(options, candidates)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	session := Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		Options:   options,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	r.sessions[session.ID] = session
	return session
}

// Consume resolves a choice against a session. A successful choice destroys
// the session and returns the chosen candidate. A choice by anyone other
// than the owner is rejected and leaves the session open; expired or unknown
// sessions and out-of-range options are rejected cleanly.
func (r *Registry) Consume(sessionID, userID string, option int) (match.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return match.Candidate{}, services.Wrap(services.ErrNotFound, "selection", "consume", "session "+sessionID+" not found", nil)
	}
	if !r.now().Before(session.ExpiresAt) {
		delete(r.sessions, sessionID)
		return match.Candidate{}, services.Wrap(services.ErrExpired, "selection", "consume", "session "+sessionID+" expired", nil)
	}
	if session.Owner != userID {
		return match.Candidate{}, services.Wrap(services.ErrForbidden, "selection", "consume", "session belongs to another user", nil)
	}
	if option < 0 || option >= len(session.Options) {
		return match.Candidate{}, services.Wrap(services.ErrValidation, "selection", "consume", "option "+strconv.Itoa(option)+" out of range", nil)
	}

	delete(r.sessions, sessionID)
	return session.Options[option], nil
}

// Sweep destroys expired sessions and returns how many were removed. The
// daemon calls this periodically; expiry is silent by design.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, session := range r.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Active returns the number of open sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
