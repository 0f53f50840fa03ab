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

func sampleAlert(id string, ts time.Time) *core.TriggeredAlert {
	return &core.TriggeredAlert{
		ID:         id,
		RuleID:     "rule-1",
		RuleName:   "High risk indicators",
		Severity:   core.SeverityHigh,
		IOC:        "45.33.32.156",
		AnalysisID: "analysis-1",
		Timestamp:  ts,
		Status:     core.AlertStatusNew,
		Details:    "Rule matched",
	}
}

func TestAlertStorage_InsertAndGet(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAlertStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	alert := sampleAlert("alert-1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.InsertAlert(ctx, alert))

	loaded, err := store.GetAlert(ctx, "alert-1")
	require.NoError(t, err)
	assert.Equal(t, alert.RuleName, loaded.RuleName)
	assert.Equal(t, alert.Severity, loaded.Severity)
	assert.Equal(t, alert.AnalysisID, loaded.AnalysisID)
	assert.Equal(t, core.AlertStatusNew, loaded.Status)
}

func TestAlertStorage_GetAlerts_NewestFirst(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAlertStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, store.InsertAlert(ctx, sampleAlert(id, base.Add(time.Duration(i)*time.Minute))))
	}

	alerts, err := store.GetAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "a3", alerts[0].ID)
	assert.Equal(t, "a2", alerts[1].ID)
	assert.Equal(t, "a1", alerts[2].ID)
}

func TestAlertStorage_UpdateAlertStatus(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteAlertStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	require.NoError(t, store.InsertAlert(ctx, sampleAlert("alert-1", time.Now().UTC())))

	require.NoError(t, store.UpdateAlertStatus(ctx, "alert-1", core.AlertStatusAcknowledged))
	loaded, err := store.GetAlert(ctx, "alert-1")
	require.NoError(t, err)
	assert.Equal(t, core.AlertStatusAcknowledged, loaded.Status)

	err = store.UpdateAlertStatus(ctx, "missing", core.AlertStatusResolved)
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestAlertStorage_SurvivesAnalysisDeletion(t *testing.T) {
	sqlite := setupTestSQLite(t)
	analyses := NewSQLiteAnalysisStorage(sqlite, zap.NewNop().Sugar())
	alerts := NewSQLiteAlertStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	id, err := analyses.SaveAnalysis(ctx, sampleAnalysis("6.6.6.6", time.Now().UTC()))
	require.NoError(t, err)

	alert := sampleAlert("alert-1", time.Now().UTC())
	alert.AnalysisID = id
	require.NoError(t, alerts.InsertAlert(ctx, alert))

	require.NoError(t, analyses.DeleteAnalysis(ctx, id))

	// The alert keeps its dangling back-reference.
	loaded, err := alerts.GetAlert(ctx, "alert-1")
	require.NoError(t, err)
	assert.Equal(t, id, loaded.AnalysisID)
}
