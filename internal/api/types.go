package api

import (
	"time"

	"marquee/internal/match"
	"marquee/internal/request"
)

// QueryRequest is the body for query and request submissions.
type QueryRequest struct {
	User  string `json:"user"`
	Title string `json:"title"`
}

// SelectRequest resolves an open disambiguation session.
type SelectRequest struct {
	User      string `json:"user"`
	SessionID string `json:"session_id"`
	Option    int    `json:"option"`
}

// CandidateView is one library movie on the wire, with its match score when
// the operation produced one.
type CandidateView struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Year    int     `json:"year,omitempty"`
	Summary string  `json:"summary,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// SessionView describes an open disambiguation session offered to the
// requester.
type SessionView struct {
	ID        string          `json:"id"`
	Options   []CandidateView `json:"options"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ActionResponse is the uniform result of query, request, and select calls.
type ActionResponse struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Candidates []CandidateView `json:"candidates,omitempty"`
	Session    *SessionView    `json:"session,omitempty"`
}

// ScoresResponse carries the ranked diagnostic scores for a title.
type ScoresResponse struct {
	Title   string          `json:"title"`
	Results []CandidateView `json:"results"`
}

// StatusResponse reports daemon liveness and counters.
type StatusResponse struct {
	Running        bool   `json:"running"`
	PID            int    `json:"pid"`
	ActiveSessions int    `json:"active_sessions"`
	TrackedUsers   int    `json:"tracked_users"`
	LockFilePath   string `json:"lock_file_path,omitempty"`
}

// TestNotificationResponse reports the outcome of a notification test.
type TestNotificationResponse struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// FromOutcome converts a workflow outcome into its wire form.
func FromOutcome(out request.Outcome) ActionResponse {
	resp := ActionResponse{
		Status:     string(out.Status),
		Message:    out.Message,
		Candidates: FromScored(out.Candidates),
	}
	if out.Session != nil {
		session := SessionView{
			ID:        out.Session.ID,
			Options:   make([]CandidateView, 0, len(out.Session.Options)),
			ExpiresAt: out.Session.ExpiresAt,
		}
		for _, option := range out.Session.Options {
			session.Options = append(session.Options, fromCandidate(option))
		}
		resp.Session = &session
	}
	return resp
}

// FromScored converts scored candidates into their wire form.
func FromScored(scored []match.ScoredCandidate) []CandidateView {
	if len(scored) == 0 {
		return nil
	}
	views := make([]CandidateView, 0, len(scored))
	for _, sc := range scored {
		view := fromCandidate(sc.Candidate)
		view.Score = sc.Score
		views = append(views, view)
	}
	return views
}

func fromCandidate(c match.Candidate) CandidateView {
	return CandidateView{
		ID:      c.ID,
		Title:   c.Title,
		Year:    c.Year,
		Summary: c.Summary,
	}
}
