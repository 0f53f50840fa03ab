package storage

import (
	"context"

	"argus/core"
)

// AnalysisStorageInterface defines the interface for analysis storage
type AnalysisStorageInterface interface {
	SaveAnalysis(ctx context.Context, result *core.AnalysisResult) (string, error)
	GetAnalyses(ctx context.Context) ([]core.AnalysisResult, error)
	GetAnalysis(ctx context.Context, id string) (*core.AnalysisResult, error)
	DeleteAnalysis(ctx context.Context, id string) error
	GetAnalysisCount(ctx context.Context) (int64, error)
}

// RuleStorageInterface defines the interface for rule storage
type RuleStorageInterface interface {
	CreateRule(ctx context.Context, rule *core.AlertRule) error
	GetRules(ctx context.Context) ([]core.AlertRule, error)
	GetEnabledRules(ctx context.Context) ([]core.AlertRule, error)
	GetRule(ctx context.Context, id string) (*core.AlertRule, error)
	SetRuleEnabled(ctx context.Context, id string, enabled bool) error
	DeleteRule(ctx context.Context, id string) error
}

// AlertStorageInterface defines the interface for triggered alert storage
type AlertStorageInterface interface {
	InsertAlert(ctx context.Context, alert *core.TriggeredAlert) error
	GetAlerts(ctx context.Context) ([]core.TriggeredAlert, error)
	GetAlert(ctx context.Context, id string) (*core.TriggeredAlert, error)
	UpdateAlertStatus(ctx context.Context, id string, status core.AlertStatus) error
	GetAlertCount(ctx context.Context) (int64, error)
}

// ActorStorageInterface defines the interface for actor profile storage
type ActorStorageInterface interface {
	SaveActor(ctx context.Context, actor *core.ThreatActor) error
	GetActors(ctx context.Context) ([]core.ThreatActor, error)
	GetActor(ctx context.Context, id string) (*core.ThreatActor, error)
	DeleteActor(ctx context.Context, id string) error
}

// IntegrationStorageInterface defines the interface for integration storage
type IntegrationStorageInterface interface {
	SaveIntegration(ctx context.Context, cfg *core.IntegrationConfig) error
	GetIntegrations(ctx context.Context) ([]core.IntegrationConfig, error)
	GetIntegration(ctx context.Context, id string) (*core.IntegrationConfig, error)
	DeleteIntegration(ctx context.Context, id string) error
	SeedDefaults(ctx context.Context, defaults []core.IntegrationConfig) error
}

// ReportStorageInterface defines the interface for report storage
type ReportStorageInterface interface {
	SaveReport(ctx context.Context, report *core.ReportConfig) error
	GetReports(ctx context.Context) ([]core.ReportConfig, error)
	GetReport(ctx context.Context, id string) (*core.ReportConfig, error)
	DeleteReport(ctx context.Context, id string) error
}
