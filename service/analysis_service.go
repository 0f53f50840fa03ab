package service

import (
	"context"
	"fmt"
	"time"

	"argus/classify"
	"argus/core"
	"argus/intel"
	"argus/metrics"
	"argus/storage"

	"go.uber.org/zap"
)

// Pipeline stage labels surfaced to observers during an analysis run
const (
	StageClassification = "classification"
	StageEnrichment     = "enrichment"
	StagePersistence    = "persistence"
	StageRuleEvaluation = "rule-evaluation"
)

// StageObserver receives progress labels as the pipeline advances. Calls
// happen on the submitting goroutine, in stage order.
type StageObserver func(stage string)

// RuleEvaluator is the detection engine surface the pipeline needs
type RuleEvaluator interface {
	EvaluateAnalysis(ctx context.Context, result *core.AnalysisResult) ([]core.TriggeredAlert, error)
}

// ActorResolver expands actor names from a classification into full
// knowledgebase profiles.
type ActorResolver interface {
	ProfilesFor(ctx context.Context, names []string) []core.ThreatActor
}

// AnalysisService coordinates one indicator submission end to end:
// classification, enrichment, persistence, then rule evaluation. It is the
// only component that guarantees ordering across those stages; in
// particular the analysis is durably persisted before rule evaluation runs,
// because triggered alerts back-reference the analysis ID.
type AnalysisService struct {
	classifier  classify.Classifier
	enricher    *intel.Orchestrator
	analyses    storage.AnalysisStorageInterface
	integration storage.IntegrationStorageInterface
	engine      RuleEvaluator
	actors      ActorResolver
	logger      *zap.SugaredLogger
}

// NewAnalysisService creates the pipeline coordinator
func NewAnalysisService(
	classifier classify.Classifier,
	enricher *intel.Orchestrator,
	analyses storage.AnalysisStorageInterface,
	integration storage.IntegrationStorageInterface,
	engine RuleEvaluator,
	actors ActorResolver,
	logger *zap.SugaredLogger,
) *AnalysisService {
	if classifier == nil {
		panic("classifier is required")
	}
	if enricher == nil {
		panic("enricher is required")
	}
	if analyses == nil {
		panic("analyses storage is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &AnalysisService{
		classifier:  classifier,
		enricher:    enricher,
		analyses:    analyses,
		integration: integration,
		engine:      engine,
		actors:      actors,
		logger:      logger,
	}
}

// Analyze runs the full pipeline for one submitted indicator. A
// classification, integration-load, or storage failure aborts the run with
// nothing persisted; rule-engine errors are logged but never fail an
// analysis that has already been saved. observer may be nil.
func (s *AnalysisService) Analyze(ctx context.Context, input string, typeHint core.IndicatorType, observer StageObserver) (*core.AnalysisResult, error) {
	notify := func(stage string) {
		if observer != nil {
			observer(stage)
		}
	}

	notify(StageClassification)
	result, err := s.classifier.Classify(ctx, input, typeHint)
	if err != nil {
		metrics.ClassificationFailures.Inc()
		return nil, err
	}

	if s.actors != nil && len(result.ThreatActors) > 0 {
		result.ThreatActorDetails = s.actors.ProfilesFor(ctx, result.ThreatActors)
	}

	notify(StageEnrichment)
	result.ExternalIntel, err = s.enrich(ctx, result.IOC, result.Type)
	if err != nil {
		return nil, err
	}

	notify(StagePersistence)
	id, err := s.analyses.SaveAnalysis(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to persist analysis: %w", err)
	}
	result.ID = id
	metrics.AnalysesCompleted.WithLabelValues(string(result.Type)).Inc()

	// Alerting is best-effort relative to the saved analysis: the engine
	// surfaces its own persistence failures, and we log rather than fail
	// a pipeline whose analysis is already durable.
	notify(StageRuleEvaluation)
	if s.engine != nil {
		if _, err := s.engine.EvaluateAnalysis(ctx, result); err != nil {
			s.logger.Errorw("Rule evaluation reported errors",
				"analysis_id", result.ID, "error", err)
		}
	}

	s.logger.Infow("Analysis completed",
		"analysis_id", result.ID,
		"ioc", result.IOC,
		"type", result.Type,
		"verdict", result.Verdict,
		"intel_entries", len(result.ExternalIntel))

	return result, nil
}

// enrich loads the current integration list and fans out to the enabled
// intel providers. An unreadable integration list aborts the pipeline:
// enrichment runs before persistence, so the caller saves nothing.
func (s *AnalysisService) enrich(ctx context.Context, ioc string, t core.IndicatorType) ([]core.ExternalIntel, error) {
	if s.integration == nil {
		return nil, nil
	}

	integrations, err := s.integration.GetIntegrations(ctx)
	if err != nil {
		s.logger.Errorw("Failed to load integrations for enrichment", "error", err)
		return nil, fmt.Errorf("failed to load integrations: %w", err)
	}

	start := time.Now()
	entries := s.enricher.Enrich(ctx, ioc, t, integrations)
	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	return entries, nil
}

// GetHistory returns all stored analyses, newest first
func (s *AnalysisService) GetHistory(ctx context.Context) ([]core.AnalysisResult, error) {
	return s.analyses.GetAnalyses(ctx)
}

// GetAnalysis retrieves one analysis by ID
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (*core.AnalysisResult, error) {
	return s.analyses.GetAnalysis(ctx, id)
}

// DeleteAnalysis hard-deletes one analysis. Alerts that reference it keep
// their dangling analysis back-reference.
func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id string) error {
	return s.analyses.DeleteAnalysis(ctx, id)
}
