package storage

import "errors"

// Storage error constants
var (
	// ErrNotFound is a generic "not found" error
	ErrNotFound = errors.New("not found")

	// ErrAnalysisNotFound is returned when an analysis is not found
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrRuleNotFound is returned when a rule is not found
	ErrRuleNotFound = errors.New("rule not found")

	// ErrAlertNotFound is returned when an alert is not found
	ErrAlertNotFound = errors.New("alert not found")

	// ErrActorNotFound is returned when a threat actor profile is not found
	ErrActorNotFound = errors.New("threat actor not found")

	// ErrIntegrationNotFound is returned when an integration is not found
	ErrIntegrationNotFound = errors.New("integration not found")

	// ErrReportNotFound is returned when a report is not found
	ErrReportNotFound = errors.New("report not found")

	// ErrDatabaseClosed is returned when attempting to use a closed database connection
	ErrDatabaseClosed = errors.New("database is closed")
)

// IsNotFound reports whether err is any of the per-collection not-found
// sentinels. Callers treat not-found as an absence, not a failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAnalysisNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrAlertNotFound) ||
		errors.Is(err, ErrActorNotFound) ||
		errors.Is(err, ErrIntegrationNotFound) ||
		errors.Is(err, ErrReportNotFound)
}
