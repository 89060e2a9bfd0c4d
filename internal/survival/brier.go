package survival

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// BrierScore computes the IPCW-weighted Brier score at evaluation time t.
// probs[i] is the predicted probability that observation i survives past t.
//
// The denominator is the full sample size: indeterminate observations and
// observations with an undefined weight contribute zero. The weights make
// the estimator consistent on that scale, so a non-informative model
// scoring 0.5 everywhere lands near 0.25. The score is undefined when no
// observation contributes at t.
func BrierScore(obs []Observation, probs []float64, t float64, g *SurvFunc) MetricRow {
	row := MetricRow{Time: t, Metric: MetricBrier}

	terms := make([]float64, 0, len(obs))
	for i, o := range obs {
		w, ok := Weight(o, t, g)
		if !ok {
			continue
		}

		// Observed binary non-event indicator vs predicted survival.
		target := 0.0
		if Encode(o, t) == LabelNonEvent {
			target = 1.0
		}
		d := target - probs[i]
		terms = append(terms, w*d*d)
	}

	row.Contributing = len(terms)
	if row.Contributing == 0 {
		return row
	}

	row.Estimate = floats.Sum(terms) / float64(len(obs))
	row.Defined = true
	return row
}

// IntegratedBrier integrates per-time Brier scores over the evaluation grid
// with the trapezoidal rule. The raw area is reported, not the time average.
// Undefined rows are dropped from the grid; with fewer than two defined
// points there is no area to report.
func IntegratedBrier(rows []MetricRow) MetricRow {
	out := MetricRow{Metric: MetricBrierIntegrated}

	var (
		ts []float64
		bs []float64
	)
	for _, r := range rows {
		if r.Metric != MetricBrier || !r.Defined {
			continue
		}
		ts = append(ts, r.Time)
		bs = append(bs, r.Estimate)
	}

	// Contributing reports the number of grid points integrated.
	out.Contributing = len(ts)
	if len(ts) < 2 {
		return out
	}

	out.Time = ts[len(ts)-1]
	out.Estimate = integrate.Trapezoidal(ts, bs)
	out.Defined = true
	return out
}
