package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"argus/core"
	"argus/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService generates narrative summary reports from the stored
// analyses and alerts. Reports are created in GENERATING state and flip to
// READY once the summary is composed; generation is synchronous and fast,
// the two-state model exists so clients can render the same lifecycle they
// would for long-running generators.
type ReportService struct {
	reports  storage.ReportStorageInterface
	analyses storage.AnalysisStorageInterface
	alerts   storage.AlertStorageInterface
	logger   *zap.SugaredLogger
}

// NewReportService creates the report generator
func NewReportService(
	reports storage.ReportStorageInterface,
	analyses storage.AnalysisStorageInterface,
	alerts storage.AlertStorageInterface,
	logger *zap.SugaredLogger,
) *ReportService {
	if reports == nil {
		panic("report storage is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &ReportService{
		reports:  reports,
		analyses: analyses,
		alerts:   alerts,
		logger:   logger,
	}
}

// CreateReport generates a new report of the given type
func (s *ReportService) CreateReport(ctx context.Context, title, reportType string) (*core.ReportConfig, error) {
	if title == "" {
		title = fmt.Sprintf("Threat Report %s", time.Now().UTC().Format("2006-01-02"))
	}
	if reportType == "" {
		reportType = "summary"
	}

	report := &core.ReportConfig{
		ID:          uuid.New().String(),
		Title:       title,
		Type:        reportType,
		GeneratedAt: time.Now().UTC(),
		Status:      core.ReportGenerating,
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	summary, err := s.composeSummary(ctx)
	if err != nil {
		s.logger.Errorw("Report summary generation failed", "report", report.ID, "error", err)
		return nil, err
	}

	report.Summary = summary
	report.Status = core.ReportReady
	if err := s.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to finalize report: %w", err)
	}
	return report, nil
}

// GetReports returns all reports, newest first
func (s *ReportService) GetReports(ctx context.Context) ([]core.ReportConfig, error) {
	return s.reports.GetReports(ctx)
}

// GetReport returns one report by ID
func (s *ReportService) GetReport(ctx context.Context, id string) (*core.ReportConfig, error) {
	return s.reports.GetReport(ctx, id)
}

// DeleteReport removes a report
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	return s.reports.DeleteReport(ctx, id)
}

// composeSummary builds the report body from current store contents
func (s *ReportService) composeSummary(ctx context.Context) (string, error) {
	analyses, err := s.analyses.GetAnalyses(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load analyses: %w", err)
	}
	alerts, err := s.alerts.GetAlerts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load alerts: %w", err)
	}

	byVerdict := make(map[core.Verdict]int)
	byType := make(map[core.IndicatorType]int)
	actorSet := make(map[string]struct{})
	for _, a := range analyses {
		byVerdict[a.Verdict]++
		byType[a.Type]++
		for _, actor := range a.ThreatActors {
			actorSet[actor] = struct{}{}
		}
	}

	open := 0
	for _, alert := range alerts {
		if alert.Status != core.AlertStatusResolved {
			open++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d indicators (%d IPs, %d domains, %d hashes, %d URLs).\n",
		len(analyses),
		byType[core.IndicatorIP], byType[core.IndicatorDomain],
		byType[core.IndicatorHash], byType[core.IndicatorURL])
	fmt.Fprintf(&b, "Verdicts: %d critical, %d high, %d medium, %d low, %d safe.\n",
		byVerdict[core.VerdictCritical], byVerdict[core.VerdictHigh],
		byVerdict[core.VerdictMedium], byVerdict[core.VerdictLow],
		byVerdict[core.VerdictSafe])
	fmt.Fprintf(&b, "Alerts: %d total, %d open.\n", len(alerts), open)
	if len(actorSet) > 0 {
		fmt.Fprintf(&b, "Threat actors observed: %d distinct groups.\n", len(actorSet))
	}

	return b.String(), nil
}
