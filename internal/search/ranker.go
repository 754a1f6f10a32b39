package search

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/termsearch/termsearch/internal/history"
)

// Candidate is a scored view over one history entry. Matched holds the
// offsets of the query characters inside the command text when a query was
// active, for highlighting.
type Candidate struct {
	Entry   *history.Entry
	Score   float64
	Matched []int
}

// entrySource adapts an entry slice to the fuzzy matcher.
type entrySource []*history.Entry

func (s entrySource) String(i int) string { return s[i].Command }
func (s entrySource) Len() int            { return len(s) }

// Rank scores all entries of the aggregate against the query and returns the
// top maxResults candidates in descending score order.
//
// With an empty query every entry is a candidate scored by the weighted
// recency/frequency blend. With a non-empty query only entries containing the
// query as a case-insensitive ordered subsequence are kept, scored by the
// match quality multiplied into the blend. Ties break on newer timestamp,
// then lexicographic command text, so identical input always yields identical
// output order.
func Rank(agg *history.Aggregate, query string, weights Weights, maxResults int) []Candidate {
	if maxResults <= 0 {
		return nil
	}

	scorer := NewScorer(agg, weights)
	entries := agg.Entries()

	var candidates []Candidate
	if query == "" {
		candidates = make([]Candidate, 0, len(entries))
		for _, entry := range entries {
			candidates = append(candidates, Candidate{
				Entry: entry,
				Score: scorer.Combined(entry),
			})
		}
	} else {
		matches := fuzzy.FindFrom(query, entrySource(entries))
		candidates = make([]Candidate, 0, len(matches))
		for _, m := range matches {
			entry := entries[m.Index]
			candidates = append(candidates, Candidate{
				Entry:   entry,
				Score:   matchQuality(m.Score) * scorer.Combined(entry),
				Matched: m.MatchedIndexes,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.Timestamp != b.Entry.Timestamp {
			return a.Entry.Timestamp > b.Entry.Timestamp
		}
		return a.Entry.Command < b.Entry.Command
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates
}
