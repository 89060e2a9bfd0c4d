package survival

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
)

type rocObs struct {
	score   float64 // 1 - predicted survival, higher = more event-like
	weight  float64
	isEvent bool
}

// ROCCurve computes the weighted time-dependent ROC curve and its AUC at
// evaluation time t. probs[i] is the predicted probability that observation
// i survives past t; the classification score is its complement.
//
// Observations tied on the score are collapsed into a single threshold step
// so the area across the tied group is a trapezoid rather than a staircase.
// When every contributing observation carries the same label the AUC is
// undefined and no curve is produced.
func ROCCurve(obs []Observation, probs []float64, t float64, g *SurvFunc) ([]ROCPoint, MetricRow) {
	row := MetricRow{Time: t, Metric: MetricROCAUC}

	contrib := make([]rocObs, 0, len(obs))
	var totalEvent, totalNonEvent float64
	for i, o := range obs {
		w, ok := Weight(o, t, g)
		if !ok {
			continue
		}
		isEvent := Encode(o, t) == LabelEvent
		if isEvent {
			totalEvent += w
		} else {
			totalNonEvent += w
		}
		contrib = append(contrib, rocObs{score: 1 - probs[i], weight: w, isEvent: isEvent})
	}

	row.Contributing = len(contrib)
	if totalEvent == 0 || totalNonEvent == 0 {
		return nil, row
	}

	sort.Slice(contrib, func(i, j int) bool { return contrib[i].score > contrib[j].score })

	// One point per distinct score, ties processed as a group.
	tpr := []float64{0}
	fpr := []float64{0}
	var curve []ROCPoint
	var cumEvent, cumNonEvent float64

	for i := 0; i < len(contrib); {
		threshold := contrib[i].score
		for i < len(contrib) && contrib[i].score == threshold {
			if contrib[i].isEvent {
				cumEvent += contrib[i].weight
			} else {
				cumNonEvent += contrib[i].weight
			}
			i++
		}

		sens := cumEvent / totalEvent
		fall := cumNonEvent / totalNonEvent
		tpr = append(tpr, sens)
		fpr = append(fpr, fall)
		curve = append(curve, ROCPoint{
			Time:        t,
			Threshold:   threshold,
			Sensitivity: sens,
			Specificity: 1 - fall,
		})
	}

	row.Estimate = integrate.Trapezoidal(fpr, tpr)
	row.Defined = true
	return curve, row
}
