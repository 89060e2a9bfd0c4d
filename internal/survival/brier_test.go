package survival

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uncensoredSample has no censoring at all, so G stays at 1 and every
// contributing weight is exactly 1.
func uncensoredSample() ([]Observation, *SurvFunc) {
	obs := []Observation{
		{Time: 1, Event: true},
		{Time: 2, Event: true},
		{Time: 8, Event: true},
		{Time: 9, Event: true},
	}
	g, err := (KaplanMeier{}).Fit(obs)
	if err != nil {
		panic(err)
	}
	return obs, g
}

func TestBrierScorePerfectModel(t *testing.T) {
	obs, g := uncensoredSample()

	// At t=4 the first two are events, the last two non-events. A
	// perfect model predicts survival 0 for events and 1 for survivors.
	probs := []float64{0, 0, 1, 1}

	row := BrierScore(obs, probs, 4, g)

	require.True(t, row.Defined)
	assert.Equal(t, 4, row.Contributing)
	assert.InDelta(t, 0.0, row.Estimate, 1e-12)
}

func TestBrierScoreNonInformativeModel(t *testing.T) {
	obs, g := uncensoredSample()

	probs := []float64{0.5, 0.5, 0.5, 0.5}

	row := BrierScore(obs, probs, 4, g)

	require.True(t, row.Defined)
	assert.InDelta(t, 0.25, row.Estimate, 1e-12)
}

func TestBrierScoreOrderingInvariance(t *testing.T) {
	obs := []Observation{
		{Time: 2, Event: true},
		{Time: 5, Event: false},
		{Time: 3, Event: true},
		{Time: 6, Event: false},
		{Time: 1, Event: false},
	}
	g, err := (KaplanMeier{}).Fit(obs)
	require.NoError(t, err)

	probs := []float64{0.2, 0.9, 0.4, 0.8, 0.6}

	base := BrierScore(obs, probs, 4, g)
	require.True(t, base.Defined)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		perm := rng.Perm(len(obs))
		shObs := make([]Observation, len(obs))
		shProbs := make([]float64, len(obs))
		for i, j := range perm {
			shObs[i] = obs[j]
			shProbs[i] = probs[j]
		}

		row := BrierScore(shObs, shProbs, 4, g)
		assert.InDelta(t, base.Estimate, row.Estimate, 1e-12)
		assert.Equal(t, base.Contributing, row.Contributing)
	}
}

func TestBrierScoreExcludesIndeterminate(t *testing.T) {
	// The record censored at 1 is indeterminate at t=4 and must
	// contribute zero while the denominator stays at the full size.
	obs := []Observation{
		{Time: 1, Event: false},
		{Time: 2, Event: true},
		{Time: 6, Event: false},
	}
	g, err := (KaplanMeier{}).Fit(obs)
	require.NoError(t, err)

	probs := []float64{0.5, 0, 1}

	row := BrierScore(obs, probs, 4, g)

	require.True(t, row.Defined)
	assert.Equal(t, 2, row.Contributing)
	// Both contributing predictions are perfect, the skipped record adds
	// nothing: 0 regardless of its prediction.
	assert.InDelta(t, 0.0, row.Estimate, 1e-12)
}

func TestBrierScoreUndefinedWithoutContributors(t *testing.T) {
	obs := []Observation{
		{Time: 1, Event: false},
		{Time: 2, Event: false},
	}
	g, err := (KaplanMeier{}).Fit(obs)
	require.NoError(t, err)

	row := BrierScore(obs, []float64{0.5, 0.5}, 3, g)

	assert.False(t, row.Defined)
	assert.Equal(t, 0, row.Contributing)
}

func TestIntegratedBrier(t *testing.T) {
	rows := []MetricRow{
		{Time: 0, Metric: MetricBrier, Estimate: 0.1, Defined: true, Contributing: 4},
		{Time: 1, Metric: MetricBrier, Estimate: 0.2, Defined: true, Contributing: 4},
		{Time: 2, Metric: MetricBrier, Estimate: 0.1, Defined: true, Contributing: 4},
		{Time: 3, Metric: MetricBrier, Estimate: 0.3, Defined: true, Contributing: 4},
	}

	out := IntegratedBrier(rows)

	require.True(t, out.Defined)
	assert.Equal(t, MetricBrierIntegrated, out.Metric)
	// (0.1+0.2)/2 + (0.2+0.1)/2 + (0.1+0.3)/2
	assert.InDelta(t, 0.50, out.Estimate, 1e-12)
	assert.Equal(t, 4, out.Contributing)
}

func TestIntegratedBrierSkipsUndefinedTimes(t *testing.T) {
	rows := []MetricRow{
		{Time: 0, Metric: MetricBrier, Estimate: 0.1, Defined: true},
		{Time: 1, Metric: MetricBrier, Defined: false},
		{Time: 2, Metric: MetricBrier, Estimate: 0.3, Defined: true},
	}

	out := IntegratedBrier(rows)

	require.True(t, out.Defined)
	// Trapezoid over the two surviving grid points.
	assert.InDelta(t, 0.4, out.Estimate, 1e-12)
	assert.Equal(t, 2, out.Contributing)
}

func TestIntegratedBrierUndefinedWithOnePoint(t *testing.T) {
	rows := []MetricRow{
		{Time: 1, Metric: MetricBrier, Estimate: 0.2, Defined: true},
	}

	out := IntegratedBrier(rows)

	assert.False(t, out.Defined)
}
