package service

import (
	"context"
	"fmt"
	"time"

	"argus/core"
	"argus/intel"
	"argus/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestResult is the outcome of a connection test or one-shot run
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// IntegrationService manages the integration catalog: the seeded default
// entries, custom entries the user adds, enable/disable with a connection
// test, and one-shot feed runs for providers that support them.
type IntegrationService struct {
	integrations storage.IntegrationStorageInterface
	analyses     storage.AnalysisStorageInterface
	registry     *intel.Registry
	engine       RuleEvaluator
	logger       *zap.SugaredLogger
}

// NewIntegrationService creates the integration manager
func NewIntegrationService(
	integrations storage.IntegrationStorageInterface,
	analyses storage.AnalysisStorageInterface,
	registry *intel.Registry,
	engine RuleEvaluator,
	logger *zap.SugaredLogger,
) *IntegrationService {
	if integrations == nil {
		panic("integration storage is required")
	}
	if registry == nil {
		panic("provider registry is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &IntegrationService{
		integrations: integrations,
		analyses:     analyses,
		registry:     registry,
		engine:       engine,
		logger:       logger,
	}
}

// SeedCatalog inserts the default integration catalog for entries not
// already present. User edits to existing entries are never overwritten.
func (s *IntegrationService) SeedCatalog(ctx context.Context) error {
	return s.integrations.SeedDefaults(ctx, DefaultCatalog())
}

// GetIntegrations returns the full catalog
func (s *IntegrationService) GetIntegrations(ctx context.Context) ([]core.IntegrationConfig, error) {
	return s.integrations.GetIntegrations(ctx)
}

// GetIntegration returns one catalog entry by ID
func (s *IntegrationService) GetIntegration(ctx context.Context, id string) (*core.IntegrationConfig, error) {
	return s.integrations.GetIntegration(ctx, id)
}

// SaveIntegration persists a catalog entry, assigning an ID and defaults
// for new custom entries.
func (s *IntegrationService) SaveIntegration(ctx context.Context, cfg *core.IntegrationConfig) error {
	if cfg.Name == "" {
		return &core.ValidationError{Field: "name", Message: "integration name is required"}
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.Category == "" {
		cfg.Category = core.CategoryIntelProvider
	}
	if cfg.Status == "" {
		cfg.Status = core.IntegrationUnknown
	}
	return s.integrations.SaveIntegration(ctx, cfg)
}

// DeleteIntegration removes a catalog entry
func (s *IntegrationService) DeleteIntegration(ctx context.Context, id string) error {
	return s.integrations.DeleteIntegration(ctx, id)
}

// SetEnabled toggles an integration. Enabling runs a connection test
// first; a failed test blocks the enable unless override is set, in which
// case the integration comes up with status degraded. Disabling never
// tests and resets the status to unknown.
func (s *IntegrationService) SetEnabled(ctx context.Context, id string, enabled, override bool) (*core.IntegrationConfig, error) {
	cfg, err := s.integrations.GetIntegration(ctx, id)
	if err != nil {
		return nil, err
	}

	if !enabled {
		cfg.Enabled = false
		cfg.Status = core.IntegrationUnknown
		if err := s.integrations.SaveIntegration(ctx, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if missing := s.missingFields(cfg); len(missing) > 0 {
		return nil, &core.ValidationError{
			Field:   missing[0],
			Message: fmt.Sprintf("integration %s is missing required field %q", cfg.Name, missing[0]),
		}
	}

	test := s.TestConnection(ctx, cfg)
	switch {
	case test.Success:
		cfg.Status = core.IntegrationOperational
	case override:
		s.logger.Warnw("Enabling integration despite failed connection test",
			"integration", cfg.Name, "message", test.Message)
		cfg.Status = core.IntegrationDegraded
	default:
		return nil, fmt.Errorf("connection test failed for %s: %s", cfg.Name, test.Message)
	}

	cfg.Enabled = true
	cfg.LastSync = time.Now().UTC().Format(time.RFC3339)
	if err := s.integrations.SaveIntegration(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TestConnection exercises an integration's credentials with a lookup of a
// well-known benign indicator. Categories without a registered provider
// only get a configuration check.
func (s *IntegrationService) TestConnection(ctx context.Context, cfg *core.IntegrationConfig) TestResult {
	if missing := s.missingFields(cfg); len(missing) > 0 {
		return TestResult{Message: fmt.Sprintf("missing required field %q", missing[0])}
	}

	provider, ok := s.registry.Resolve(cfg.ID, cfg.FieldValues())
	if !ok {
		// Custom or non-provider entries have nothing to call out to.
		return TestResult{Success: true, Message: "configuration is complete"}
	}

	value, t := probeIndicator(provider)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := provider.Lookup(ctx, value, t); err != nil {
		return TestResult{Message: err.Error()}
	}
	return TestResult{Success: true, Message: fmt.Sprintf("%s responded", provider.Name())}
}

// RunIntegration performs a one-shot feed pull for providers that support
// it, persisting each pulled indicator as an analysis and evaluating rules
// against it. Providers without a feed fall back to a connection test.
func (s *IntegrationService) RunIntegration(ctx context.Context, id string) (*TestResult, error) {
	cfg, err := s.integrations.GetIntegration(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("integration %s is disabled", cfg.Name)
	}

	provider, ok := s.registry.Resolve(cfg.ID, cfg.FieldValues())
	if !ok {
		return nil, fmt.Errorf("integration %s has no runnable provider", cfg.Name)
	}

	puller, ok := provider.(intel.FeedPuller)
	if !ok {
		res := s.TestConnection(ctx, cfg)
		return &res, nil
	}

	results, err := puller.PullFeed(ctx)
	if err != nil {
		cfg.Status = core.IntegrationDegraded
		if saveErr := s.integrations.SaveIntegration(ctx, cfg); saveErr != nil {
			s.logger.Errorw("Failed to record degraded status", "integration", cfg.Name, "error", saveErr)
		}
		return nil, fmt.Errorf("feed pull failed for %s: %w", cfg.Name, err)
	}

	imported := 0
	for i := range results {
		result := &results[i]
		id, err := s.analyses.SaveAnalysis(ctx, result)
		if err != nil {
			s.logger.Errorw("Failed to persist feed indicator", "ioc", result.IOC, "error", err)
			continue
		}
		result.ID = id
		imported++

		if s.engine != nil {
			if _, err := s.engine.EvaluateAnalysis(ctx, result); err != nil {
				s.logger.Errorw("Rule evaluation failed for feed indicator", "ioc", result.IOC, "error", err)
			}
		}
	}

	cfg.Status = core.IntegrationOperational
	cfg.LastSync = time.Now().UTC().Format(time.RFC3339)
	if err := s.integrations.SaveIntegration(ctx, cfg); err != nil {
		s.logger.Errorw("Failed to record feed run", "integration", cfg.Name, "error", err)
	}

	return &TestResult{
		Success: true,
		Message: fmt.Sprintf("imported %d indicators from %s", imported, provider.Name()),
		Count:   imported,
	}, nil
}

func (s *IntegrationService) missingFields(cfg *core.IntegrationConfig) []string {
	provider, ok := s.registry.Resolve(cfg.ID, cfg.FieldValues())
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range provider.RequiredFields() {
		if cfg.FieldValue(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// probeIndicator picks a benign well-known indicator the provider supports
func probeIndicator(p intel.Provider) (string, core.IndicatorType) {
	if p.Supports(core.IndicatorIP) {
		return "8.8.8.8", core.IndicatorIP
	}
	return "example.com", core.IndicatorDomain
}
