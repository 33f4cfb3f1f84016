// Package match implements the title matching and ranking engine.
//
// A free-text query is compared against library candidates using a tiered
// heuristic: exact normalized match, first-word and contained-word rules for
// single-word queries, phrase containment for multi-word queries, and a
// word-set Jaccard fallback with penalties for short queries and displaced
// first words. The Ranker queries an injected search provider, scores every
// returned candidate, filters at a threshold, and returns a stable
// score-descending prefix.
package match
