package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"argus/core"
	"argus/metrics"
	"argus/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertSink receives triggered alerts for follow-up delivery. Delivery is
// best-effort; failures never affect evaluation.
type AlertSink interface {
	NotifyAlert(alert *core.TriggeredAlert, channels []string)
}

// Engine evaluates the enabled rule set against finished analysis results
// and materializes a TriggeredAlert per match. The rule set is read fresh
// on every invocation, so edits take effect on the next analysis rather
// than one in flight.
type Engine struct {
	ruleStorage  storage.RuleStorageInterface
	alertStorage storage.AlertStorageInterface
	sink         AlertSink
	logger       *zap.SugaredLogger
}

// NewEngine creates a rule evaluation engine. sink may be nil.
func NewEngine(ruleStorage storage.RuleStorageInterface, alertStorage storage.AlertStorageInterface, sink AlertSink, logger *zap.SugaredLogger) *Engine {
	if ruleStorage == nil {
		panic("ruleStorage is required")
	}
	if alertStorage == nil {
		panic("alertStorage is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Engine{
		ruleStorage:  ruleStorage,
		alertStorage: alertStorage,
		sink:         sink,
		logger:       logger,
	}
}

// EvaluateAnalysis runs every enabled rule against one analysis result.
// Each matching rule produces exactly one alert, persisted immediately so a
// failure partway through never loses alerts already triggered. The full
// list of alerts raised by this invocation is returned even when some
// persists failed; persistence failures are joined into the returned error
// rather than silently dropped.
func (e *Engine) EvaluateAnalysis(ctx context.Context, result *core.AnalysisResult) ([]core.TriggeredAlert, error) {
	rules, err := e.ruleStorage.GetEnabledRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load enabled rules: %w", err)
	}

	var triggered []core.TriggeredAlert
	var persistErrs []error

	for i := range rules {
		rule := &rules[i]
		if !EvaluateRule(rule, result) {
			continue
		}

		alert := core.TriggeredAlert{
			ID:         uuid.New().String(),
			RuleID:     rule.ID,
			RuleName:   rule.Name,
			Severity:   rule.Severity,
			IOC:        result.IOC,
			AnalysisID: result.ID,
			Timestamp:  time.Now().UTC(),
			Status:     core.AlertStatusNew,
			Details:    fmt.Sprintf("Rule %q matched %s indicator %s", rule.Name, result.Type, result.IOC),
		}

		// The alert is part of this invocation's result whether or not
		// its persist succeeded; the persist error travels separately.
		triggered = append(triggered, alert)

		if err := e.alertStorage.InsertAlert(ctx, &alert); err != nil {
			persistErrs = append(persistErrs, fmt.Errorf("rule %s: %w", rule.ID, err))
			e.logger.Errorw("Failed to persist triggered alert",
				"rule_id", rule.ID, "analysis_id", result.ID, "error", err)
			continue
		}

		metrics.AlertsTriggered.WithLabelValues(string(alert.Severity)).Inc()
		e.logger.Infow("Alert triggered",
			"rule_id", rule.ID,
			"rule_name", rule.Name,
			"severity", alert.Severity,
			"ioc", alert.IOC)

		if e.sink != nil && len(rule.ActionChannels) > 0 {
			e.sink.NotifyAlert(&alert, rule.ActionChannels)
		}
	}

	return triggered, errors.Join(persistErrs...)
}
