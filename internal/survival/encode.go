package survival

// Encode classifies one observation at evaluation time t.
//
// An observed time past t is a non-event regardless of the event flag:
// survival beyond t was directly observed. An event at or before t is an
// event. A censoring at or before t leaves the status at t unknown.
func Encode(obs Observation, t float64) Label {
	if obs.Time > t {
		return LabelNonEvent
	}
	if obs.Event {
		return LabelEvent
	}
	return LabelIndeterminate
}

// EncodeAll encodes every observation at t.
func EncodeAll(obs []Observation, t float64) []Label {
	labels := make([]Label, len(obs))
	for i, o := range obs {
		labels[i] = Encode(o, t)
	}
	return labels
}
