package service

import (
	"context"
	"testing"
	"time"

	"argus/core"
	"argus/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memReportStorage struct {
	reports map[string]*core.ReportConfig
}

func newMemReportStorage() *memReportStorage {
	return &memReportStorage{reports: make(map[string]*core.ReportConfig)}
}

func (s *memReportStorage) SaveReport(ctx context.Context, report *core.ReportConfig) error {
	copied := *report
	s.reports[report.ID] = &copied
	return nil
}
func (s *memReportStorage) GetReports(ctx context.Context) ([]core.ReportConfig, error) {
	var out []core.ReportConfig
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, nil
}
func (s *memReportStorage) GetReport(ctx context.Context, id string) (*core.ReportConfig, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrReportNotFound
	}
	copied := *r
	return &copied, nil
}
func (s *memReportStorage) DeleteReport(ctx context.Context, id string) error {
	delete(s.reports, id)
	return nil
}

func TestReportService_CreateReport(t *testing.T) {
	now := time.Now().UTC()
	analyses := &stubAnalysisStorage{saved: []core.AnalysisResult{
		{ID: "a1", IOC: "1.2.3.4", Type: core.IndicatorIP, Verdict: core.VerdictHigh, Timestamp: now, ThreatActors: []string{"APT28"}},
		{ID: "a2", IOC: "evil.com", Type: core.IndicatorDomain, Verdict: core.VerdictMedium, Timestamp: now, ThreatActors: []string{"APT28", "FIN7"}},
		{ID: "a3", IOC: "d41d8cd98f00b204e9800998ecf8427e", Type: core.IndicatorHash, Verdict: core.VerdictSafe, Timestamp: now},
	}}
	alerts := newStubAlertStorage(
		&core.TriggeredAlert{ID: "al1", Status: core.AlertStatusNew},
		&core.TriggeredAlert{ID: "al2", Status: core.AlertStatusResolved},
	)

	svc := NewReportService(newMemReportStorage(), analyses, alerts, zap.NewNop().Sugar())

	report, err := svc.CreateReport(context.Background(), "", "")
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Contains(t, report.Title, "Threat Report")
	assert.Equal(t, "summary", report.Type)
	assert.Equal(t, core.ReportReady, report.Status)

	assert.Contains(t, report.Summary, "Analyzed 3 indicators")
	assert.Contains(t, report.Summary, "2 total, 1 open")
	assert.Contains(t, report.Summary, "2 distinct groups")
}

func TestReportService_CreateReport_CustomTitle(t *testing.T) {
	svc := NewReportService(newMemReportStorage(), &stubAnalysisStorage{}, newStubAlertStorage(), zap.NewNop().Sugar())

	report, err := svc.CreateReport(context.Background(), "Q3 Review", "executive")
	require.NoError(t, err)
	assert.Equal(t, "Q3 Review", report.Title)
	assert.Equal(t, "executive", report.Type)
}

func TestReportService_GetReport_NotFound(t *testing.T) {
	svc := NewReportService(newMemReportStorage(), &stubAnalysisStorage{}, newStubAlertStorage(), zap.NewNop().Sugar())

	_, err := svc.GetReport(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrReportNotFound)
}
