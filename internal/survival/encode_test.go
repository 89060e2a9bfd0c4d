package survival

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		obs      Observation
		at       float64
		expected Label
	}{
		{
			name:     "event before evaluation time",
			obs:      Observation{Time: 2, Event: true},
			at:       4,
			expected: LabelEvent,
		},
		{
			name:     "event exactly at evaluation time",
			obs:      Observation{Time: 4, Event: true},
			at:       4,
			expected: LabelEvent,
		},
		{
			name:     "survival past evaluation time",
			obs:      Observation{Time: 5, Event: false},
			at:       4,
			expected: LabelNonEvent,
		},
		{
			name:     "survival past evaluation time with later event",
			obs:      Observation{Time: 5, Event: true},
			at:       4,
			expected: LabelNonEvent,
		},
		{
			name:     "censored before evaluation time",
			obs:      Observation{Time: 3, Event: false},
			at:       4,
			expected: LabelIndeterminate,
		},
		{
			name:     "censored exactly at evaluation time",
			obs:      Observation{Time: 4, Event: false},
			at:       4,
			expected: LabelIndeterminate,
		},
		{
			name:     "evaluation at time zero",
			obs:      Observation{Time: 1, Event: true},
			at:       0,
			expected: LabelNonEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.obs, tt.at))
		})
	}
}

func TestEncodeAll(t *testing.T) {
	obs := []Observation{
		{Time: 2, Event: true},
		{Time: 5, Event: false},
		{Time: 3, Event: true},
		{Time: 6, Event: false},
	}

	labels := EncodeAll(obs, 4)

	assert.Equal(t, []Label{LabelEvent, LabelNonEvent, LabelEvent, LabelNonEvent}, labels)
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "event", LabelEvent.String())
	assert.Equal(t, "non_event", LabelNonEvent.String())
	assert.Equal(t, "indeterminate", LabelIndeterminate.String())
}
