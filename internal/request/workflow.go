package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"marquee/internal/logging"
	"marquee/internal/match"
	"marquee/internal/notifications"
	"marquee/internal/ratelimit"
	"marquee/internal/selection"
	"marquee/internal/services"
)

// Characters that are never legitimate in a movie title and are rejected
// before the query reaches the search provider.
const forbiddenTitleRunes = `<>"'`

// Limits bounds what a single invocation will accept and show.
type Limits struct {
	MinTitleLength int
	MaxTitleLength int
	MaxShown       int
}

// Coordinator wires the rate limiter, ranker, selection registry, and
// notifier into the user-facing workflow. All dependencies are injected;
// the coordinator holds no state of its own.
type Coordinator struct {
	ranker   *match.Ranker
	limiter  *ratelimit.Limiter
	sessions *selection.Registry
	notifier notifications.Service
	logger   *slog.Logger
	limits   Limits
}

// NewCoordinator constructs the workflow coordinator.
func NewCoordinator(
	ranker *match.Ranker,
	limiter *ratelimit.Limiter,
	sessions *selection.Registry,
	notifier notifications.Service,
	logger *slog.Logger,
	limits Limits,
) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if limits.MaxShown < 1 {
		limits.MaxShown = 1
	}
	return &Coordinator{
		ranker:   ranker,
		limiter:  limiter,
		sessions: sessions,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		limits:   limits,
	}
}

// Query checks whether a movie is already in the library. It consumes a
// rate-limit slot and never opens a session or sends notifications.
func (c *Coordinator) Query(ctx context.Context, userID, title string) (out Outcome) {
	defer c.recoverPanic(ctx, "query", &out)

	if denied := c.admit(ctx, userID, title); denied != nil {
		return *denied
	}
	title, invalid := c.validateTitle(title)
	if invalid != nil {
		return *invalid
	}

	ranked := c.ranker.Rank(ctx, title)
	if len(ranked) == 0 {
		return Outcome{
			Status:  StatusNoMatch,
			Message: fmt.Sprintf("%q doesn't appear to be in the library. You can request it to have it added.", title),
		}
	}
	if len(ranked) > c.limits.MaxShown {
		ranked = ranked[:c.limits.MaxShown]
	}

	message := fmt.Sprintf("Found %d matches for %q.", len(ranked), title)
	if len(ranked) == 1 {
		message = fmt.Sprintf("%s is already in the library.", DisplayTitle(ranked[0].Candidate))
	}
	return Outcome{
		Status:     StatusFound,
		Message:    message,
		Candidates: ranked,
	}
}

// Request asks for a movie to be added. A single match submits immediately,
// several matches open a selection session, and no match is still forwarded
// to the administrator as an unmatched request.
func (c *Coordinator) Request(ctx context.Context, userID, title string) (out Outcome) {
	defer c.recoverPanic(ctx, "request", &out)

	if denied := c.admit(ctx, userID, title); denied != nil {
		return *denied
	}
	title, invalid := c.validateTitle(title)
	if invalid != nil {
		return *invalid
	}

	log := logging.WithContext(ctx, c.logger)
	ranked := c.ranker.Rank(ctx, title)

	switch len(ranked) {
	case 0:
		log.Info("request had no library match",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldTitle, title))
		c.notify(ctx, notifications.EventRequestUnmatched, notifications.Payload{
			"requester": userID,
			"title":     title,
		})
		return Outcome{
			Status:  StatusNoMatch,
			Message: fmt.Sprintf("No match found for %q, but your request has been passed along to the admin.", title),
		}
	case 1:
		chosen := ranked[0].Candidate
		log.Info("request submitted",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldTitle, chosen.Title),
			logging.Float64("score", ranked[0].Score))
		c.notify(ctx, notifications.EventRequestSubmitted, candidatePayload(userID, chosen))
		return Outcome{
			Status:     StatusSubmitted,
			Message:    fmt.Sprintf("Your request for %s has been submitted.", DisplayTitle(chosen)),
			Candidates: ranked,
		}
	default:
		options := make([]match.Candidate, 0, len(ranked))
		for _, sc := range ranked {
			options = append(options, sc.Candidate)
		}
		session := c.sessions.Create(userID, options)
		log.Info("request needs selection",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldTitle, title),
			logging.String(logging.FieldSessionID, session.ID),
			logging.Int("options", len(session.Options)))
		return Outcome{
			Status:  StatusNeedsSelection,
			Message: fmt.Sprintf("Found %d possible matches for %q. Pick the one you meant.", len(session.Options), title),
			Session: &SessionOffer{
				ID:        session.ID,
				Options:   session.Options,
				ExpiresAt: session.ExpiresAt,
			},
		}
	}
}

// Select resolves an open disambiguation session with the requester's
// choice. Selection does not consume a rate-limit slot; the request that
// opened the session already did.
func (c *Coordinator) Select(ctx context.Context, userID, sessionID string, option int) (out Outcome) {
	defer c.recoverPanic(ctx, "select", &out)

	log := logging.WithContext(ctx, c.logger)
	chosen, err := c.sessions.Consume(sessionID, userID, option)
	if err != nil {
		log.Info("selection rejected",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
		return selectionRejection(err)
	}

	log.Info("selection confirmed",
		logging.String(logging.FieldUserID, userID),
		logging.String(logging.FieldSessionID, sessionID),
		logging.String(logging.FieldTitle, chosen.Title))
	c.notify(ctx, notifications.EventSelectionConfirmed, candidatePayload(userID, chosen))
	return Outcome{
		Status:     StatusSubmitted,
		Message:    fmt.Sprintf("Your request for %s has been submitted.", DisplayTitle(chosen)),
		Candidates: []match.ScoredCandidate{{Candidate: chosen, Score: 1}},
	}
}

// Scores runs the ranking engine for a title and returns the scored results
// without touching the rate limiter or sessions. It backs the admin
// diagnostics surface.
func (c *Coordinator) Scores(ctx context.Context, title string) ([]match.ScoredCandidate, error) {
	title, invalid := c.validateTitle(title)
	if invalid != nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "scores", invalid.Message, nil)
	}
	return c.ranker.Rank(ctx, title), nil
}

// admit consumes a rate-limit slot for the user. Admission runs before
// validation so malformed floods cost a slot too.
func (c *Coordinator) admit(ctx context.Context, userID, title string) *Outcome {
	if c.limiter.Admit(userID) {
		return nil
	}
	logging.WithContext(ctx, c.logger).Info("rate limited",
		logging.String(logging.FieldUserID, userID),
		logging.String(logging.FieldTitle, title))
	return &Outcome{
		Status:  StatusRateLimited,
		Message: "Too many requests. Please wait a moment before trying again.",
	}
}

// validateTitle trims the title and checks it against the configured bounds.
// The returned title is the trimmed form used for all downstream work.
func (c *Coordinator) validateTitle(title string) (string, *Outcome) {
	title = strings.TrimSpace(title)

	reject := func(message string) (string, *Outcome) {
		return title, &Outcome{Status: StatusInvalid, Message: message}
	}

	if title == "" {
		return reject("Movie title cannot be empty.")
	}
	length := utf8.RuneCountInString(title)
	if length < c.limits.MinTitleLength {
		return reject(fmt.Sprintf("Movie title must be at least %d characters long.", c.limits.MinTitleLength))
	}
	if length > c.limits.MaxTitleLength {
		return reject(fmt.Sprintf("Movie title must be less than %d characters long.", c.limits.MaxTitleLength))
	}
	if strings.ContainsAny(title, forbiddenTitleRunes) {
		return reject("Movie title contains invalid characters.")
	}
	return title, nil
}

func selectionRejection(err error) Outcome {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return Outcome{Status: StatusRejected, Message: "This selection isn't for you."}
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrExpired):
		return Outcome{Status: StatusRejected, Message: "That selection has expired or no longer exists. Please submit your request again."}
	case errors.Is(err, services.ErrValidation):
		return Outcome{Status: StatusRejected, Message: "That option isn't valid for this selection."}
	default:
		return genericFailure()
	}
}

func candidatePayload(userID string, c match.Candidate) notifications.Payload {
	payload := notifications.Payload{
		"requester": userID,
		"title":     c.Title,
		"summary":   c.Summary,
	}
	if c.Year > 0 {
		payload["year"] = strconv.Itoa(c.Year)
	}
	return payload
}

// notify delivers an admin notification, logging failures without ever
// surfacing them to the requester.
func (c *Coordinator) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Publish(ctx, event, payload); err != nil {
		logging.WithContext(ctx, c.logger).Warn("notification delivery failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}

// recoverPanic converts a panic in a workflow operation into a generic
// requester-facing failure so one bad invocation cannot take the daemon down.
func (c *Coordinator) recoverPanic(ctx context.Context, operation string, out *Outcome) {
	if r := recover(); r != nil {
		logging.WithContext(ctx, c.logger).Error("workflow operation panicked",
			logging.String("operation", operation),
			logging.Any("panic", r))
		*out = genericFailure()
	}
}
