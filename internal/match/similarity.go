package match

import "strings"

// Similarity tier scores, highest-priority rule first.
const (
	scoreExact     = 1.0
	scoreFirstWord = 0.9
	scorePhrase    = 0.8
	scoreAnyWord   = 0.6

	// Jaccard penalties, each applied at most once.
	shortQueryRatio    = 0.5
	shortQueryPenalty  = 0.7
	displacedWordSpan  = 2
	displacedWordScale = 0.8
)

// Similarity computes a bounded similarity score between a query and a
// candidate title. The query is the needle and the candidate the haystack;
// swapping arguments changes the result. Rules are evaluated in strict
// priority order and the first that fires wins.
func Similarity(query, candidateTitle string) float64 {
	q := Normalize(query)
	c := Normalize(candidateTitle)

	if q == c {
		return scoreExact
	}

	qWords := strings.Fields(q)
	cWords := strings.Fields(c)

	if len(qWords) == 1 {
		word := qWords[0]
		if len(cWords) > 0 && cWords[0] == word {
			return scoreFirstWord
		}
		for _, w := range cWords {
			if w == word {
				return scoreAnyWord
			}
		}
		// Single-word misses fall through to Jaccard.
	}

	if len(qWords) > 1 && c != "" && strings.Contains(c, q) {
		return scorePhrase
	}

	return jaccard(qWords, cWords)
}

// jaccard scores the word-set overlap and applies two independent penalties:
// one for queries much shorter than the candidate, one for a query whose
// first word is not among the candidate's first two words.
func jaccard(qWords, cWords []string) float64 {
	if len(qWords) == 0 || len(cWords) == 0 {
		return 0
	}

	qSet := wordSet(qWords)
	cSet := wordSet(cWords)

	intersection := 0
	for w := range qSet {
		if _, ok := cSet[w]; ok {
			intersection++
		}
	}
	union := len(qSet) + len(cSet) - intersection
	if union == 0 {
		return 0
	}
	score := float64(intersection) / float64(union)

	if float64(len(qWords))/float64(len(cWords)) < shortQueryRatio {
		score *= shortQueryPenalty
	}
	if !containsWord(cWords[:min(displacedWordSpan, len(cWords))], qWords[0]) {
		score *= displacedWordScale
	}
	return score
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
