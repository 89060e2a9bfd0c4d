package survival

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput marks boundary validation failures. Callers can map it to
// their own error surface with errors.Is.
var ErrInvalidInput = errors.New("invalid evaluation input")

// Evaluator runs the full dynamic-metric pipeline: fit the censoring
// distribution once, then compute Brier and ROC/AUC at every evaluation
// time. Per-time computations are independent and run concurrently.
type Evaluator struct {
	censoring CensoringEstimator
	workers   int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCensoringEstimator substitutes the censoring-distribution strategy.
func WithCensoringEstimator(est CensoringEstimator) Option {
	return func(e *Evaluator) { e.censoring = est }
}

// WithWorkers bounds the per-time fan-out.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEvaluator creates an evaluator with a reverse Kaplan-Meier censoring
// fit and one worker per CPU.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		censoring: KaplanMeier{},
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes dynamic metrics for the supplied sample. probs is the
// predicted survival matrix: probs[i][j] is the probability that
// observation i survives past times[j]. Rows are expected monotone
// non-increasing across times; out-of-range probabilities are rejected.
func (e *Evaluator) Evaluate(ctx context.Context, obs []Observation, times []float64, probs [][]float64) (*Result, error) {
	if err := validate(obs, times, probs); err != nil {
		return nil, err
	}

	// The censoring fit must complete before any weight query.
	g, err := e.censoring.Fit(obs)
	if err != nil {
		return nil, fmt.Errorf("censoring fit: %w", err)
	}

	brierRows := make([]MetricRow, len(times))
	aucRows := make([]MetricRow, len(times))
	curves := make([][]ROCPoint, len(times))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(e.workers)
	for j := range times {
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col := make([]float64, len(obs))
			for i := range obs {
				col[i] = probs[i][j]
			}
			brierRows[j] = BrierScore(obs, col, times[j], g)
			curves[j], aucRows[j] = ROCCurve(obs, col, times[j], g)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Metrics:         make([]MetricRow, 0, 2*len(times)),
		IntegratedBrier: IntegratedBrier(brierRows),
	}
	for j := range times {
		res.Metrics = append(res.Metrics, brierRows[j], aucRows[j])
		res.ROC = append(res.ROC, curves[j]...)
	}
	return res, nil
}

func validate(obs []Observation, times []float64, probs [][]float64) error {
	if len(obs) == 0 {
		return fmt.Errorf("%w: empty observation sample", ErrInvalidInput)
	}
	for i, o := range obs {
		if o.Time < 0 {
			return fmt.Errorf("%w: observation %d has negative observed time %v", ErrInvalidInput, i, o.Time)
		}
	}

	if len(times) == 0 {
		return fmt.Errorf("%w: no evaluation times", ErrInvalidInput)
	}
	if times[0] < 0 {
		return fmt.Errorf("%w: negative evaluation time %v", ErrInvalidInput, times[0])
	}
	if !sort.Float64sAreSorted(times) {
		return fmt.Errorf("%w: evaluation times must be ascending", ErrInvalidInput)
	}
	for j := 1; j < len(times); j++ {
		if times[j] == times[j-1] {
			return fmt.Errorf("%w: duplicate evaluation time %v", ErrInvalidInput, times[j])
		}
	}

	if len(probs) != len(obs) {
		return fmt.Errorf("%w: %d probability rows for %d observations", ErrInvalidInput, len(probs), len(obs))
	}
	for i, row := range probs {
		if len(row) != len(times) {
			return fmt.Errorf("%w: probability row %d has %d columns for %d times", ErrInvalidInput, i, len(row), len(times))
		}
		for j, p := range row {
			if p < 0 || p > 1 {
				return fmt.Errorf("%w: probability out of range at observation %d, time %v: %v", ErrInvalidInput, i, times[j], p)
			}
		}
	}
	return nil
}
