package intel

import (
	"context"
	"sync"
	"time"

	"argus/core"
	"argus/metrics"

	"go.uber.org/zap"
)

// Orchestrator fans an indicator out to every enabled, type-applicable
// intel provider and gathers the results. Provider failures are isolated:
// a failed call becomes an ExternalIntel entry with Error set, and one slow
// provider never drops the others' results. The join waits for all
// providers to settle; there are no retries within a single enrichment.
type Orchestrator struct {
	registry *Registry
	cache    *LookupCache
	logger   *zap.SugaredLogger
}

// NewOrchestrator creates an orchestrator over the given provider registry
func NewOrchestrator(registry *Registry, cache *LookupCache, logger *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// boundProvider is one provider resolved from an enabled integration
type boundProvider struct {
	slug     string
	provider Provider
}

// Enrich queries every applicable provider concurrently and returns one
// entry per provider in declaration order, not completion order. Providers
// whose integration is disabled, that don't support the indicator type, or
// that are missing required configuration are skipped without an entry:
// absence means "not applicable", which is distinct from an error entry.
func (o *Orchestrator) Enrich(ctx context.Context, value string, t core.IndicatorType, integrations []core.IntegrationConfig) []core.ExternalIntel {
	applicable := o.selectProviders(t, integrations)
	if len(applicable) == 0 {
		return nil
	}

	// Scatter into index-stable slots so output order follows provider
	// declaration order regardless of completion order.
	slots := make([]core.ExternalIntel, len(applicable))
	var wg sync.WaitGroup

	for i, bound := range applicable {
		wg.Add(1)
		go func(i int, bound boundProvider) {
			defer wg.Done()
			slots[i] = o.lookupOne(ctx, bound, value, t)
		}(i, bound)
	}

	wg.Wait()
	return slots
}

// selectProviders filters integrations down to enabled intel providers that
// support the indicator type and have their required fields configured.
func (o *Orchestrator) selectProviders(t core.IndicatorType, integrations []core.IntegrationConfig) []boundProvider {
	var applicable []boundProvider

	for i := range integrations {
		cfg := &integrations[i]
		if cfg.Category != core.CategoryIntelProvider || !cfg.Enabled {
			continue
		}

		provider, ok := o.registry.Resolve(cfg.ID, cfg.FieldValues())
		if !ok {
			// Custom integration entry with no built-in implementation
			continue
		}

		if !provider.Supports(t) {
			continue
		}

		// A provider enabled without its credentials should not have
		// been enabled at all; skip silently rather than record an
		// error the user can't act on from the result view.
		missing := false
		for _, key := range provider.RequiredFields() {
			if cfg.FieldValue(key) == "" {
				o.logger.Warnw("Skipping intel provider with missing configuration",
					"provider", cfg.ID, "field", key)
				missing = true
				break
			}
		}
		if missing {
			continue
		}

		applicable = append(applicable, boundProvider{slug: cfg.ID, provider: provider})
	}

	return applicable
}

// lookupOne executes a single provider call, serving from cache when
// possible and converting any failure into an error entry.
func (o *Orchestrator) lookupOne(ctx context.Context, bound boundProvider, value string, t core.IndicatorType) core.ExternalIntel {
	if o.cache != nil {
		if cached, found := o.cache.Get(bound.slug, t, value); found {
			return cached
		}
	}

	start := time.Now()
	intel, err := bound.provider.Lookup(ctx, value, t)
	if err != nil {
		pErr := &core.ProviderError{Source: bound.provider.Name(), Err: err}
		o.logger.Warnw("Intel provider lookup failed",
			"provider", bound.slug,
			"type", t,
			"elapsed", time.Since(start),
			"error", pErr)
		metrics.ProviderErrorsTotal.WithLabelValues(bound.slug).Inc()
		return core.ExternalIntel{
			Source: bound.provider.Name(),
			Error:  pErr.Error(),
		}
	}

	o.logger.Debugw("Intel provider lookup completed",
		"provider", bound.slug,
		"type", t,
		"elapsed", time.Since(start))

	if o.cache != nil {
		o.cache.Set(bound.slug, t, value, *intel)
	}
	return *intel
}
