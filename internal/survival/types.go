package survival

// Label is the three-way outcome of an observation at an evaluation time.
type Label int

const (
	// LabelIndeterminate marks observations censored at or before the
	// evaluation time; they carry no ground truth at that time.
	LabelIndeterminate Label = iota
	LabelEvent
	LabelNonEvent
)

func (l Label) String() string {
	switch l {
	case LabelEvent:
		return "event"
	case LabelNonEvent:
		return "non_event"
	default:
		return "indeterminate"
	}
}

// Observation is one subject: an observed time and whether the event was
// seen (true) or the subject was censored (false) at that time.
type Observation struct {
	Time  float64 `json:"time"`
	Event bool    `json:"event"`
}

// MetricRow is one dynamic metric value at one evaluation time. Defined is
// false when the metric could not be estimated there (degenerate sample or
// exhausted censoring information); Estimate is meaningless in that case.
type MetricRow struct {
	Time         float64 `json:"evaluation_time"`
	Metric       string  `json:"metric"`
	Estimate     float64 `json:"estimate"`
	Defined      bool    `json:"defined"`
	Contributing int     `json:"contributing"`
}

// ROCPoint is one threshold step of the weighted ROC curve at one
// evaluation time.
type ROCPoint struct {
	Time        float64 `json:"evaluation_time"`
	Threshold   float64 `json:"threshold"`
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
}

// Result is the terminal output of one evaluation call.
type Result struct {
	Metrics         []MetricRow `json:"metrics"`
	IntegratedBrier MetricRow   `json:"integrated_brier"`
	ROC             []ROCPoint  `json:"roc"`
}

// Metric names as they appear in result rows.
const (
	MetricBrier           = "brier"
	MetricROCAUC          = "roc_auc"
	MetricBrierIntegrated = "brier_integrated"
)
