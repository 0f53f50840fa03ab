package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestSQLite creates a migrated temp database for storage tests
func setupTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	logger := zap.NewNop().Sugar()

	sqlite, err := NewSQLite(dbPath, logger)
	require.NoError(t, err, "Failed to create SQLite database")
	require.NotNil(t, sqlite.DB)
	t.Cleanup(func() { _ = sqlite.Close() })

	runner, err := NewMigrationRunner(sqlite.DB, logger)
	require.NoError(t, err)
	RegisterSQLiteMigrations(runner)
	require.NoError(t, runner.Apply())

	return sqlite
}

func TestNewSQLite_RejectsPathTraversal(t *testing.T) {
	_, err := NewSQLite("../escape.db", zap.NewNop().Sugar())
	require.Error(t, err)
}

func TestMigrations_ApplyIsIdempotent(t *testing.T) {
	sqlite := setupTestSQLite(t)
	logger := zap.NewNop().Sugar()

	runner, err := NewMigrationRunner(sqlite.DB, logger)
	require.NoError(t, err)
	RegisterSQLiteMigrations(runner)

	pending, err := runner.GetPendingMigrations()
	require.NoError(t, err)
	assert.Empty(t, pending, "all migrations should already be applied")

	require.NoError(t, runner.Apply())

	applied, err := runner.GetAppliedMigrations()
	require.NoError(t, err)
	assert.NotEmpty(t, applied)
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, compareVersions("1.0.0", "1.1.0"))
	assert.Equal(t, 1, compareVersions("1.2.0", "1.1.9"))
	assert.Equal(t, 0, compareVersions("1.0.0", "1.0.0"))
	assert.Equal(t, -1, compareVersions("1.9.0", "1.10.0"))
}
