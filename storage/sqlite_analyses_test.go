package storage

import (
	"context"
	"testing"
	"time"

	"argus/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func floatPtr(f float64) *float64 { return &f }

func sampleAnalysis(ioc string, ts time.Time) *core.AnalysisResult {
	return &core.AnalysisResult{
		IOC:             ioc,
		Type:            core.IndicatorIP,
		RiskScore:       72,
		Verdict:         core.VerdictHigh,
		Description:     "Known scanning host",
		MitigationSteps: []string{"Block at perimeter", "Review firewall logs"},
		TechnicalDetails: core.TechnicalDetails{
			ASN:       "AS63949",
			OpenPorts: []int{22, 80},
		},
		ThreatActors:    []string{"APT28"},
		MalwareFamilies: []string{"Emotet"},
		ExternalIntel: []core.ExternalIntel{
			{Source: "VirusTotal", Score: floatPtr(12), MaxScore: floatPtr(70), Tags: []string{"scanner"}},
			{Source: "AbuseIPDB", Error: "request timed out"},
		},
		Timestamp: ts,
	}
}

func TestAnalysisStorage_SaveAndGetRoundTrip(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAnalysisStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	original := sampleAnalysis("45.33.32.156", time.Now().UTC().Truncate(time.Second))

	id, err := store.SaveAnalysis(ctx, original)
	require.NoError(t, err)
	require.NotEmpty(t, id, "an ID should be assigned when none is given")

	loaded, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, original.IOC, loaded.IOC)
	assert.Equal(t, original.Type, loaded.Type)
	assert.Equal(t, original.RiskScore, loaded.RiskScore)
	assert.Equal(t, original.Verdict, loaded.Verdict)
	assert.Equal(t, original.MitigationSteps, loaded.MitigationSteps)
	assert.Equal(t, original.ThreatActors, loaded.ThreatActors)
	assert.Equal(t, original.MalwareFamilies, loaded.MalwareFamilies)

	require.Len(t, loaded.ExternalIntel, 2)
	assert.Equal(t, "VirusTotal", loaded.ExternalIntel[0].Source)
	require.NotNil(t, loaded.ExternalIntel[0].Score)
	assert.Equal(t, 12.0, *loaded.ExternalIntel[0].Score)
	assert.Equal(t, "request timed out", loaded.ExternalIntel[1].Error)
}

func TestAnalysisStorage_GetAnalyses_NewestFirst(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAnalysisStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, ioc := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		a := sampleAnalysis(ioc, base.Add(time.Duration(i)*time.Minute))
		_, err := store.SaveAnalysis(ctx, a)
		require.NoError(t, err)
	}

	all, err := store.GetAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "3.3.3.3", all[0].IOC)
	assert.Equal(t, "2.2.2.2", all[1].IOC)
	assert.Equal(t, "1.1.1.1", all[2].IOC)
}

func TestAnalysisStorage_GetAnalysis_NotFound(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAnalysisStorage(sqlite, zap.NewNop().Sugar())

	_, err := store.GetAnalysis(context.Background(), "missing")
	require.ErrorIs(t, err, ErrAnalysisNotFound)
	assert.True(t, IsNotFound(err))
}

func TestAnalysisStorage_DeleteAnalysis(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAnalysisStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	id, err := store.SaveAnalysis(ctx, sampleAnalysis("9.9.9.9", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, store.DeleteAnalysis(ctx, id))

	_, err = store.GetAnalysis(ctx, id)
	require.ErrorIs(t, err, ErrAnalysisNotFound)

	// Deleting an absent record reports success.
	require.NoError(t, store.DeleteAnalysis(ctx, "missing"))
}

func TestAnalysisStorage_SaveUpsertsOnSameID(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAnalysisStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	a := sampleAnalysis("8.8.8.8", time.Now().UTC().Truncate(time.Second))
	a.ID = "fixed-id"
	_, err := store.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	a.RiskScore = 99
	a.Verdict = core.VerdictCritical
	_, err = store.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	count, err := store.GetAnalysisCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	loaded, err := store.GetAnalysis(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, 99, loaded.RiskScore)
	assert.Equal(t, core.VerdictCritical, loaded.Verdict)
}
