package survival

import (
	"fmt"
	"sort"
)

// SurvFunc is an estimated survival function represented as a
// right-continuous step function: Prob(i) holds on [Time(i), Time(i+1)).
// Before the first jump the function is 1.
type SurvFunc struct {
	times []float64
	probs []float64
}

// At returns the survival probability at t.
func (s *SurvFunc) At(t float64) float64 {
	// index of the last jump at or before t
	i := sort.SearchFloat64s(s.times, t)
	if i < len(s.times) && s.times[i] == t {
		return s.probs[i]
	}
	if i == 0 {
		return 1
	}
	return s.probs[i-1]
}

// AtLeft returns the left limit of the survival probability at t, i.e. the
// value just before any jump located exactly at t.
func (s *SurvFunc) AtLeft(t float64) float64 {
	i := sort.SearchFloat64s(s.times, t)
	if i == 0 {
		return 1
	}
	return s.probs[i-1]
}

// Time returns the jump times of the step function.
func (s *SurvFunc) Time() []float64 { return s.times }

// SurvProb returns the survival probabilities after each jump.
func (s *SurvFunc) SurvProb() []float64 { return s.probs }

// CensoringEstimator fits the censoring-time survival distribution G on the
// full evaluation sample. Implementations must be usable for left-limit
// queries once fit, so the fit completes before any weight is computed.
type CensoringEstimator interface {
	Fit(obs []Observation) (*SurvFunc, error)
}

// KaplanMeier estimates the censoring distribution with a product-limit fit
// on the complemented event flag: censorings are treated as the events of
// interest and observed events as the censorings.
type KaplanMeier struct{}

// Fit computes the reverse Kaplan-Meier estimate of G.
func (KaplanMeier) Fit(obs []Observation) (*SurvFunc, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("censoring fit requires a non-empty sample")
	}

	sorted := append([]Observation(nil), obs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var (
		times []float64
		probs []float64
	)

	surv := 1.0
	n := len(sorted)
	for i := 0; i < n; {
		u := sorted[i].Time
		atRisk := n - i

		// Count censorings tied at u; the risk set holds everything
		// still under observation at u.
		jumps := 0
		j := i
		for j < n && sorted[j].Time == u {
			if !sorted[j].Event {
				jumps++
			}
			j++
		}

		if jumps > 0 {
			surv *= 1 - float64(jumps)/float64(atRisk)
			times = append(times, u)
			probs = append(probs, surv)
		}
		i = j
	}

	return &SurvFunc{times: times, probs: probs}, nil
}
