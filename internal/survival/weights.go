package survival

// Weight computes the inverse-probability-of-censoring weight for one
// observation at evaluation time t, given the fitted censoring survival
// function G. The second return is false when the weight is undefined:
// either the label at t is indeterminate, or the censoring estimate has no
// mass left at the required point.
//
// Non-events at t reweight by 1/G(t). Events reweight by the left limit
// 1/G(T-) so the jump caused by the record itself is not used.
func Weight(obs Observation, t float64, g *SurvFunc) (float64, bool) {
	switch Encode(obs, t) {
	case LabelNonEvent:
		p := g.At(t)
		if p <= 0 {
			return 0, false
		}
		return 1 / p, true
	case LabelEvent:
		p := g.AtLeft(obs.Time)
		if p <= 0 {
			return 0, false
		}
		return 1 / p, true
	default:
		return 0, false
	}
}
