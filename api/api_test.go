package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"argus/classify"
	"argus/config"
	"argus/core"
	"argus/detect"
	"argus/intel"
	"argus/service"
	"argus/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestAPI wires the full service stack over a migrated temp database,
// with the offline classifier and no enabled intel integrations.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	logger := zap.NewNop().Sugar()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	sqlite, err := storage.NewSQLite(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	runner, err := storage.NewMigrationRunner(sqlite.DB, logger)
	require.NoError(t, err)
	storage.RegisterSQLiteMigrations(runner)
	require.NoError(t, runner.Apply())

	analyses := storage.NewSQLiteAnalysisStorage(sqlite, logger)
	rules := storage.NewSQLiteRuleStorage(sqlite, logger)
	alerts := storage.NewSQLiteAlertStorage(sqlite, logger)
	actors := storage.NewSQLiteActorStorage(sqlite, logger)
	integrations := storage.NewSQLiteIntegrationStorage(sqlite, logger)
	reports := storage.NewSQLiteReportStorage(sqlite, logger)

	registry := intel.NewRegistry()
	cache := intel.NewLookupCache(16, time.Minute)
	orchestrator := intel.NewOrchestrator(registry, cache, logger)
	engine := detect.NewEngine(rules, alerts, nil, logger)

	analysisSvc := service.NewAnalysisService(
		classify.NewHeuristicClassifier(), orchestrator, analyses, integrations, engine, nil, logger)
	ruleSvc := service.NewRuleService(rules, logger)
	alertSvc := service.NewAlertService(alerts, logger)
	integrationSvc := service.NewIntegrationService(integrations, analyses, registry, engine, logger)
	actorSvc := service.NewActorService(actors, logger)
	reportSvc := service.NewReportService(reports, analyses, alerts, logger)

	cfg := &config.Config{}
	cfg.API.AllowedOrigins = []string{"http://localhost:5173"}

	return NewAPI(analysisSvc, ruleSvc, alertSvc, integrationSvc, actorSvc, reportSvc, cfg, logger)
}

func doJSON(t *testing.T, a *API, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPI_Analyze(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/analyze", map[string]string{"input": "45.33.32.156"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "45.33.32.156", result.IOC)
	assert.Equal(t, core.IndicatorIP, result.Type)

	rec = doJSON(t, a, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []core.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, result.ID, history[0].ID)
}

func TestAPI_Analyze_MissingInput(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/analyze", map[string]string{"input": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetAnalysis_NotFound(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodGet, "/api/history/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_RuleTriggersAlertAndLifecycle(t *testing.T) {
	a := newTestAPI(t)

	rule := core.AlertRule{
		Name:     "Suspicious score",
		Severity: core.SeverityHigh,
		Enabled:  true,
		Groups: []core.AlertGroup{{
			ID:    "g1",
			Logic: core.LogicAnd,
			Conditions: []core.AlertCondition{
				{ID: "c1", Field: "riskScore", Operator: "greaterThan", Value: "30"},
			},
		}},
	}
	rec := doJSON(t, a, http.MethodPost, "/api/rules", rule)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Hash indicators score above the rule threshold offline.
	rec = doJSON(t, a, http.MethodPost, "/api/analyze",
		map[string]string{"input": "d41d8cd98f00b204e9800998ecf8427e"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, a, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var triggered []core.TriggeredAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &triggered))
	require.Len(t, triggered, 1)
	assert.Equal(t, core.AlertStatusNew, triggered[0].Status)
	assert.Equal(t, "Suspicious score", triggered[0].RuleName)

	alertID := triggered[0].ID
	rec = doJSON(t, a, http.MethodPut, "/api/alerts/"+alertID+"/status",
		map[string]string{"status": string(core.AlertStatusAcknowledged)})
	require.Equal(t, http.StatusOK, rec.Code)

	// Unknown status values are rejected before the lifecycle check.
	rec = doJSON(t, a, http.MethodPut, "/api/alerts/"+alertID+"/status",
		map[string]string{"status": "ESCALATED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Backward transitions are rejected.
	rec = doJSON(t, a, http.MethodPut, "/api/alerts/"+alertID+"/status",
		map[string]string{"status": string(core.AlertStatusNew)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_CreateRule_MissingName(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/rules", core.AlertRule{Severity: core.SeverityLow})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_HealthCheck(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPI_CORSPreflight(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
