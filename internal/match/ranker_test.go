package match_test

import (
	"context"
	"errors"
	"testing"

	"marquee/internal/logging"
	"marquee/internal/match"
)

func staticSearcher(candidates ...match.Candidate) match.Searcher {
	return match.SearcherFunc(func(context.Context, string) ([]match.Candidate, error) {
		return candidates, nil
	})
}

func TestRankOrdersExactMatchFirst(t *testing.T) {
	searcher := staticSearcher(
		match.Candidate{ID: "2", Title: "Iron Man 2", Year: 2010},
		match.Candidate{ID: "1", Title: "Iron Man", Year: 2008},
		match.Candidate{ID: "3", Title: "Iron Man 3", Year: 2013},
	)
	ranker := match.NewRanker(searcher, logging.NewNop(), 0.5, 10)

	got := ranker.Rank(context.Background(), "Iron Man")
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "1" || got[0].Score != 1.0 {
		t.Fatalf("expected exact match first with score 1.0, got %+v", got[0])
	}
	// Ties keep the provider's original order.
	if got[1].ID != "2" || got[2].ID != "3" {
		t.Fatalf("expected stable tie order 2,3; got %s,%s", got[1].ID, got[2].ID)
	}
}

func TestRankFiltersBelowThreshold(t *testing.T) {
	searcher := staticSearcher(
		match.Candidate{ID: "1", Title: "Iron Man"},
		match.Candidate{ID: "2", Title: "Some Unrelated Film"},
	)
	ranker := match.NewRanker(searcher, logging.NewNop(), 0.5, 10)

	got := ranker.Rank(context.Background(), "Iron Man")
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected only the matching candidate, got %+v", got)
	}
	for _, sc := range got {
		if sc.Score < 0.5 {
			t.Fatalf("candidate %s survived below threshold: %v", sc.ID, sc.Score)
		}
	}
}

func TestRankTruncatesToMaxResults(t *testing.T) {
	searcher := staticSearcher(
		match.Candidate{ID: "1", Title: "Iron Man"},
		match.Candidate{ID: "2", Title: "Iron Man 2"},
		match.Candidate{ID: "3", Title: "Iron Man 3"},
	)
	ranker := match.NewRanker(searcher, logging.NewNop(), 0.0, 2)

	got := ranker.Rank(context.Background(), "Iron Man")
	if len(got) != 2 {
		t.Fatalf("expected truncation to 2 results, got %d", len(got))
	}
}

func TestRankConvertsProviderFailureToEmpty(t *testing.T) {
	searcher := match.SearcherFunc(func(context.Context, string) ([]match.Candidate, error) {
		return nil, errors.New("connection refused")
	})
	ranker := match.NewRanker(searcher, logging.NewNop(), 0.5, 10)

	if got := ranker.Rank(context.Background(), "Iron Man"); len(got) != 0 {
		t.Fatalf("expected empty result on provider failure, got %+v", got)
	}
}

func TestRankEmptyProviderResult(t *testing.T) {
	ranker := match.NewRanker(staticSearcher(), logging.NewNop(), 0.5, 10)
	if got := ranker.Rank(context.Background(), "Nonexistent Movie XYZ"); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
