package core

import "fmt"

// ClassificationError indicates the external classifier failed or returned
// unparseable output. Fatal to the pipeline run: nothing is persisted.
type ClassificationError struct {
	Message string
	Err     error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("classification failed: %s", e.Message)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ProviderError indicates one enrichment provider failed. Isolated: it is
// recorded as an ExternalIntel error entry and never fails the pipeline.
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError indicates user-supplied configuration failed validation
// before any side effect was attempted. Surfaced as a blocking message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation: %s", e.Message)
}
