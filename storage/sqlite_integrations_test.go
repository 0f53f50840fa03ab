package storage

import (
	"context"
	"testing"

	"argus/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func defaultIntegrations() []core.IntegrationConfig {
	return []core.IntegrationConfig{
		{
			ID:       "vt",
			Name:     "VirusTotal",
			Category: core.CategoryIntelProvider,
			Status:   core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "apiKey", Label: "API Key", Type: "password"},
			},
		},
		{
			ID:       "otx",
			Name:     "AlienVault OTX",
			Category: core.CategoryIntelProvider,
			Status:   core.IntegrationUnknown,
		},
	}
}

func TestIntegrationStorage_SeedDefaults(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteIntegrationStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	require.NoError(t, store.SeedDefaults(ctx, defaultIntegrations()))

	all, err := store.GetIntegrations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIntegrationStorage_SeedNeverOverwritesUserEdits(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteIntegrationStorage(sqlite, zap.NewNop().Sugar())
	ctx := context.Background()

	require.NoError(t, store.SeedDefaults(ctx, defaultIntegrations()))

	// User configures credentials and enables the integration.
	vt, err := store.GetIntegration(ctx, "vt")
	require.NoError(t, err)
	vt.Enabled = true
	vt.Fields[0].Value = "user-api-key"
	vt.Status = core.IntegrationOperational
	require.NoError(t, store.SaveIntegration(ctx, vt))

	// A later startup re-seeds the catalog.
	require.NoError(t, store.SeedDefaults(ctx, defaultIntegrations()))

	reloaded, err := store.GetIntegration(ctx, "vt")
	require.NoError(t, err)
	assert.True(t, reloaded.Enabled)
	assert.Equal(t, "user-api-key", reloaded.FieldValue("apiKey"))
	assert.Equal(t, core.IntegrationOperational, reloaded.Status)
}

func TestIntegrationStorage_GetIntegration_NotFound(t *testing.T) {
	sqlite := setupTestSQLite(t)
	store := NewSQLiteIntegrationStorage(sqlite, zap.NewNop().Sugar())

	_, err := store.GetIntegration(context.Background(), "missing")
	require.ErrorIs(t, err, ErrIntegrationNotFound)
}

func TestIntegrationConfig_FieldHelpers(t *testing.T) {
	cfg := core.IntegrationConfig{
		Fields: []core.IntegrationField{
			{Key: "apiKey", Value: "secret"},
			{Key: "url", Value: "https://example.com"},
		},
	}

	assert.Equal(t, "secret", cfg.FieldValue("apiKey"))
	assert.Equal(t, "", cfg.FieldValue("missing"))
	assert.Equal(t, map[string]string{
		"apiKey": "secret",
		"url":    "https://example.com",
	}, cfg.FieldValues())
}
