package match

import "context"

// Candidate is a library item returned by the search provider.
type Candidate struct {
	ID      string
	Title   string
	Year    int
	Summary string
}

// ScoredCandidate pairs a candidate with its similarity score in [0,1].
type ScoredCandidate struct {
	Candidate
	Score float64
}

// Searcher is the external search provider the ranker delegates to.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) ([]Candidate, error)

func (f SearcherFunc) Search(ctx context.Context, query string) ([]Candidate, error) {
	return f(ctx, query)
}
