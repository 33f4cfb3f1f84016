package match

import (
	"context"
	"log/slog"
	"sort"

	"marquee/internal/logging"
)

// Ranker turns free-text queries into ranked candidate lists using an
// injected search provider.
type Ranker struct {
	searcher   Searcher
	logger     *slog.Logger
	minScore   float64
	maxResults int
}

// NewRanker constructs a ranker. Candidates scoring below minScore are
// discarded and at most maxResults survive.
func NewRanker(searcher Searcher, logger *slog.Logger, minScore float64, maxResults int) *Ranker {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxResults < 1 {
		maxResults = 1
	}
	return &Ranker{
		searcher:   searcher,
		logger:     logging.NewComponentLogger(logger, "ranker"),
		minScore:   minScore,
		maxResults: maxResults,
	}
}

// Rank queries the search provider, scores every returned candidate against
// the query, filters at the minimum threshold, and returns the results in
// descending score order with the provider's order preserved on ties.
// Provider failures are absorbed here: the failure is logged and an empty
// list returned, never an error.
func (r *Ranker) Rank(ctx context.Context, query string) []ScoredCandidate {
	if r == nil || r.searcher == nil {
		return nil
	}

	candidates, err := r.searcher.Search(ctx, query)
	if err != nil {
		logging.WithContext(ctx, r.logger).Warn("search provider failed",
			logging.String(logging.FieldTitle, query),
			logging.Error(err))
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		score := Similarity(query, candidate.Title)
		if score < r.minScore {
			continue
		}
		scored = append(scored, ScoredCandidate{Candidate: candidate, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > r.maxResults {
		scored = scored[:r.maxResults]
	}
	return scored
}
