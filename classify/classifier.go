// Package classify wraps the external indicator classifier. The classifier
// is a collaborator, not part of the analysis core: it receives the raw
// submission and returns the initial structured record, which the pipeline
// then enriches, persists, and evaluates.
package classify

import (
	"context"

	"argus/core"
)

// Classifier turns a raw indicator submission into an initial analysis
// record. The returned record carries no ID and no external intel; those
// are filled in downstream by the pipeline. Failures are fatal to the
// enclosing pipeline run and nothing is persisted.
type Classifier interface {
	Classify(ctx context.Context, input string, typeHint core.IndicatorType) (*core.AnalysisResult, error)
}

// Settings are the tunable generation parameters passed explicitly to the
// classifier rather than read from ambient state, keeping classification
// calls reproducible and testable.
type Settings struct {
	Model              string
	Temperature        float64
	MaxTokens          int
	Language           string
	DetailLevel        string
	RiskTolerance      string
	CustomInstructions string
	MaxContextItems    int
}

// resolveType applies the explicit hint when given, otherwise infers the
// indicator type from the input shape.
func resolveType(input string, typeHint core.IndicatorType) (core.IndicatorType, error) {
	if typeHint != "" {
		if !typeHint.IsValid() {
			return "", &core.ClassificationError{Message: "invalid type hint: " + string(typeHint)}
		}
		return typeHint, nil
	}
	t, ok := core.DetectIndicatorType(input)
	if !ok {
		return "", &core.ClassificationError{Message: "could not determine indicator type for input"}
	}
	return t, nil
}
