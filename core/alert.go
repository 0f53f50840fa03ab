package core

import "time"

// AlertStatus tracks where a triggered alert sits in its lifecycle
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "NEW"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusResolved     AlertStatus = "RESOLVED"
)

// IsValid reports whether the status is a known value
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusNew, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	}
	return false
}

// TriggeredAlert is one incident record produced by a rule match.
// RuleName and Severity are denormalized snapshots taken at trigger time so
// the alert stays readable after the rule is edited or deleted. AnalysisID
// is a weak back-reference: deleting the analysis leaves it dangling.
type TriggeredAlert struct {
	ID         string      `json:"id"`
	RuleID     string      `json:"rule_id"`
	RuleName   string      `json:"rule_name"`
	Severity   Severity    `json:"severity"`
	IOC        string      `json:"ioc"`
	AnalysisID string      `json:"analysis_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Status     AlertStatus `json:"status"`
	Details    string      `json:"details,omitempty"`
}
