package bootstrap

import (
	"fmt"

	"argus/config"
	"argus/storage"

	"go.uber.org/zap"
)

// StorageComponents bundles the per-collection storage handles built on the
// shared SQLite connection.
type StorageComponents struct {
	SQLite       *storage.SQLite
	Analyses     *storage.SQLiteAnalysisStorage
	Rules        *storage.SQLiteRuleStorage
	Alerts       *storage.SQLiteAlertStorage
	Actors       *storage.SQLiteActorStorage
	Integrations *storage.SQLiteIntegrationStorage
	Reports      *storage.SQLiteReportStorage
}

// InitStorage opens the SQLite database, applies pending schema migrations
// and builds the per-collection storages. Migrations run before any storage
// handle is handed out.
func InitStorage(cfg *config.Config, sugar *zap.SugaredLogger) (*StorageComponents, error) {
	sqlite, err := storage.NewSQLite(cfg.DataPaths.SQLitePath, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	runner, err := storage.NewMigrationRunner(sqlite.DB, sugar)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to initialize migration runner: %w", err)
	}
	storage.RegisterSQLiteMigrations(runner)
	if err := runner.Apply(); err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	sugar.Info("SQLite initialized successfully")

	return &StorageComponents{
		SQLite:       sqlite,
		Analyses:     storage.NewSQLiteAnalysisStorage(sqlite, sugar),
		Rules:        storage.NewSQLiteRuleStorage(sqlite, sugar),
		Alerts:       storage.NewSQLiteAlertStorage(sqlite, sugar),
		Actors:       storage.NewSQLiteActorStorage(sqlite, sugar),
		Integrations: storage.NewSQLiteIntegrationStorage(sqlite, sugar),
		Reports:      storage.NewSQLiteReportStorage(sqlite, sugar),
	}, nil
}
