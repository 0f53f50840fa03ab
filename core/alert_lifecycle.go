package core

import (
	"errors"
	"fmt"
)

// validTransitions defines allowed state transitions for triggered alerts.
// Status only moves forward: once resolved an alert never reopens.
var validTransitions = map[AlertStatus][]AlertStatus{
	AlertStatusNew:          {AlertStatusAcknowledged, AlertStatusResolved},
	AlertStatusAcknowledged: {AlertStatusResolved},
	AlertStatusResolved:     {}, // Final state - no transitions allowed
}

// TransitionTo validates and executes an alert status transition.
// Returns an error if the transition is not allowed.
func (a *TriggeredAlert) TransitionTo(newStatus AlertStatus) error {
	if newStatus == "" {
		return errors.New("new status cannot be empty")
	}

	if !newStatus.IsValid() {
		return fmt.Errorf("invalid alert status: %s", newStatus)
	}

	allowed, exists := validTransitions[a.Status]
	if !exists {
		return fmt.Errorf("unknown current status: %s", a.Status)
	}

	for _, status := range allowed {
		if status == newStatus {
			a.Status = newStatus
			return nil
		}
	}

	return fmt.Errorf("invalid transition: %s -> %s (allowed: %v)", a.Status, newStatus, allowed)
}

// CanTransitionTo checks if a transition is allowed without executing it
func (a *TriggeredAlert) CanTransitionTo(newStatus AlertStatus) bool {
	if !newStatus.IsValid() {
		return false
	}

	allowed, exists := validTransitions[a.Status]
	if !exists {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}

	return false
}

// IsFinalState checks if the alert is in a terminal status
func (a *TriggeredAlert) IsFinalState() bool {
	allowed, exists := validTransitions[a.Status]
	if !exists {
		return false
	}
	return len(allowed) == 0
}
