package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlert_TransitionTo_ValidTransitions(t *testing.T) {
	testCases := []struct {
		name      string
		from      AlertStatus
		to        AlertStatus
		shouldErr bool
	}{
		{"New to Acknowledged", AlertStatusNew, AlertStatusAcknowledged, false},
		{"New to Resolved", AlertStatusNew, AlertStatusResolved, false},
		{"Acknowledged to Resolved", AlertStatusAcknowledged, AlertStatusResolved, false},

		{"Acknowledged to New", AlertStatusAcknowledged, AlertStatusNew, true},
		{"Resolved to New", AlertStatusResolved, AlertStatusNew, true},
		{"Resolved to Acknowledged", AlertStatusResolved, AlertStatusAcknowledged, true},
		{"New to New", AlertStatusNew, AlertStatusNew, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			alert := &TriggeredAlert{
				ID:     "alert-1",
				Status: tc.from,
			}

			err := alert.TransitionTo(tc.to)
			if tc.shouldErr {
				require.Error(t, err)
				assert.Equal(t, tc.from, alert.Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.to, alert.Status)
			}
		})
	}
}

func TestAlert_TransitionTo_UnknownStatus(t *testing.T) {
	alert := &TriggeredAlert{ID: "alert-1", Status: AlertStatusNew}

	err := alert.TransitionTo(AlertStatus("ESCALATED"))
	require.Error(t, err)
	assert.Equal(t, AlertStatusNew, alert.Status)
}

func TestAlert_CanTransitionTo(t *testing.T) {
	alert := &TriggeredAlert{ID: "alert-1", Status: AlertStatusNew}

	assert.True(t, alert.CanTransitionTo(AlertStatusAcknowledged))
	assert.True(t, alert.CanTransitionTo(AlertStatusResolved))
	assert.False(t, alert.CanTransitionTo(AlertStatusNew))

	alert.Status = AlertStatusResolved
	assert.False(t, alert.CanTransitionTo(AlertStatusAcknowledged))
	assert.False(t, alert.CanTransitionTo(AlertStatusNew))
}

func TestAlert_IsFinalState(t *testing.T) {
	alert := &TriggeredAlert{Status: AlertStatusNew}
	assert.False(t, alert.IsFinalState())

	alert.Status = AlertStatusAcknowledged
	assert.False(t, alert.IsFinalState())

	alert.Status = AlertStatusResolved
	assert.True(t, alert.IsFinalState())
}
