// Package predictor supplies survival-probability curves to the evaluator.
// Each model family implements SurvivalPredictor; the evaluator never
// inspects the model, it only consumes the probability matrix.
package predictor

import (
	"fmt"
	"sort"

	"github.com/statwatch/survmeter/internal/survival"
)

// SurvivalPredictor yields per-observation survival probabilities at the
// requested evaluation times. The returned matrix has one row per
// observation of the prediction sample and one column per time.
type SurvivalPredictor interface {
	PredictSurvival(times []float64) ([][]float64, error)
}

// KaplanMeierBaseline predicts the marginal product-limit survival curve of
// the training sample for every observation. It is the covariate-free
// reference model: any covariate-aware model should beat it.
type KaplanMeierBaseline struct {
	curve *survival.SurvFunc
	n     int
}

// NewKaplanMeierBaseline fits the marginal survival curve on the sample.
func NewKaplanMeierBaseline(obs []survival.Observation) (*KaplanMeierBaseline, error) {
	// The product-limit machinery jumps on censorings, so flipping the
	// event flag turns it into a fit of the event-time distribution.
	flipped := make([]survival.Observation, len(obs))
	for i, o := range obs {
		flipped[i] = survival.Observation{Time: o.Time, Event: !o.Event}
	}

	curve, err := (survival.KaplanMeier{}).Fit(flipped)
	if err != nil {
		return nil, fmt.Errorf("baseline fit: %w", err)
	}
	return &KaplanMeierBaseline{curve: curve, n: len(obs)}, nil
}

// PredictSurvival returns the fitted marginal curve for every observation.
func (k *KaplanMeierBaseline) PredictSurvival(times []float64) ([][]float64, error) {
	row := make([]float64, len(times))
	for j, t := range times {
		row[j] = k.curve.At(t)
	}

	out := make([][]float64, k.n)
	for i := range out {
		out[i] = append([]float64(nil), row...)
	}
	return out, nil
}

// StepCurves wraps precomputed per-observation survival curves, one
// right-continuous step function per row, defined on a shared time grid.
// Before the first grid point every curve is 1.
type StepCurves struct {
	grid []float64
	rows [][]float64
}

// NewStepCurves validates and wraps a survival matrix on its grid.
func NewStepCurves(grid []float64, rows [][]float64) (*StepCurves, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("step curves: empty time grid")
	}
	if !sort.Float64sAreSorted(grid) {
		return nil, fmt.Errorf("step curves: grid must be ascending")
	}
	for i, row := range rows {
		if len(row) != len(grid) {
			return nil, fmt.Errorf("step curves: row %d has %d values for %d grid points", i, len(row), len(grid))
		}
		for j, p := range row {
			if p < 0 || p > 1 {
				return nil, fmt.Errorf("step curves: probability out of range at row %d, column %d: %v", i, j, p)
			}
			if j > 0 && p > row[j-1] {
				return nil, fmt.Errorf("step curves: row %d is not monotone non-increasing at column %d", i, j)
			}
		}
	}
	return &StepCurves{grid: grid, rows: rows}, nil
}

// PredictSurvival evaluates every curve at the requested times.
func (s *StepCurves) PredictSurvival(times []float64) ([][]float64, error) {
	out := make([][]float64, len(s.rows))
	for i, row := range s.rows {
		out[i] = make([]float64, len(times))
		for j, t := range times {
			out[i][j] = stepAt(s.grid, row, t)
		}
	}
	return out, nil
}

func stepAt(grid, vals []float64, t float64) float64 {
	i := sort.SearchFloat64s(grid, t)
	if i < len(grid) && grid[i] == t {
		return vals[i]
	}
	if i == 0 {
		return 1
	}
	return vals[i-1]
}
