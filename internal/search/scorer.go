// Package search ranks aggregated history entries by a blended
// recency/frequency score, refined by a fuzzy subsequence match when a
// query is present.
package search

import (
	"math"

	"github.com/termsearch/termsearch/internal/history"
)

// Weights controls the influence of recency and frequency on the combined
// score.
type Weights struct {
	Recency   float64
	Frequency float64
}

// DefaultWeights returns equal weighting for recency and frequency.
func DefaultWeights() Weights {
	return Weights{Recency: 0.5, Frequency: 0.5}
}

// Scorer computes normalized scores for entries of one aggregate. The
// aggregate's bounds are used for normalization, so a scorer is only valid
// for the aggregate it was built from.
type Scorer struct {
	agg     *history.Aggregate
	weights Weights
}

// NewScorer creates a scorer over the given aggregate.
func NewScorer(agg *history.Aggregate, weights Weights) *Scorer {
	return &Scorer{agg: agg, weights: weights}
}

// RecencyScore returns a score in [0,1], linear in the entry's timestamp
// between the oldest and newest entries. A more recent entry never scores
// lower than an older one.
func (s *Scorer) RecencyScore(entry *history.Entry) float64 {
	span := s.agg.Newest() - s.agg.Oldest()
	if span == 0 {
		return 1.0
	}
	return float64(entry.Timestamp-s.agg.Oldest()) / float64(span)
}

// FrequencyScore returns a score in (0,1], logarithmic in the occurrence
// count so heavy repetition does not dominate without bound.
func (s *Scorer) FrequencyScore(entry *history.Entry) float64 {
	maxCount := s.agg.MaxCount()
	if maxCount <= 1 {
		return 1.0
	}
	return math.Log1p(float64(entry.Count)) / math.Log1p(float64(maxCount))
}

// Combined returns the weighted sum of the recency and frequency scores.
func (s *Scorer) Combined(entry *history.Entry) float64 {
	return s.weights.Recency*s.RecencyScore(entry) +
		s.weights.Frequency*s.FrequencyScore(entry)
}

// matchQuality maps a raw fuzzy match score into the open interval (0,2)
// with a strictly monotonic transform. Keeping the multiplier positive means
// multiplying it into the combined score never inverts the fuzzy ordering,
// and equally good matches still tie-break on recency and frequency.
func matchQuality(score int) float64 {
	s := float64(score)
	return 1.0 + s/(1.0+math.Abs(s))
}
