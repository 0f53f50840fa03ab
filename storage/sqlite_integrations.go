package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"argus/core"

	"go.uber.org/zap"
)

// SQLiteIntegrationStorage persists integration configurations. Credential
// field values are stored in plaintext; the local-only deployment model
// accepts this risk.
type SQLiteIntegrationStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteIntegrationStorage creates a new integration storage instance
func NewSQLiteIntegrationStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteIntegrationStorage {
	return &SQLiteIntegrationStorage{sqlite: sqlite, logger: logger}
}

// SaveIntegration upserts an integration by its slug ID
func (s *SQLiteIntegrationStorage) SaveIntegration(ctx context.Context, cfg *core.IntegrationConfig) error {
	fields, err := marshalColumn(cfg.Fields)
	if err != nil {
		return err
	}

	_, err = s.sqlite.DB.ExecContext(ctx, `
		INSERT INTO integrations (id, name, category, description, enabled, icon_name, fields, status, last_sync)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			description = excluded.description,
			enabled = excluded.enabled,
			icon_name = excluded.icon_name,
			fields = excluded.fields,
			status = excluded.status,
			last_sync = excluded.last_sync`,
		cfg.ID, cfg.Name, string(cfg.Category), cfg.Description,
		boolToInt(cfg.Enabled), cfg.IconName, fields, string(cfg.Status), cfg.LastSync,
	)
	if err != nil {
		return fmt.Errorf("failed to save integration: %w", err)
	}
	return nil
}

// GetIntegrations returns every integration in catalog order (by name)
func (s *SQLiteIntegrationStorage) GetIntegrations(ctx context.Context) ([]core.IntegrationConfig, error) {
	rows, err := s.sqlite.DB.QueryContext(ctx, `
		SELECT id, name, category, description, enabled, icon_name, fields, status, last_sync
		FROM integrations ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query integrations: %w", err)
	}
	defer rows.Close()

	var configs []core.IntegrationConfig
	for rows.Next() {
		cfg, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

// GetIntegration retrieves one integration by ID
func (s *SQLiteIntegrationStorage) GetIntegration(ctx context.Context, id string) (*core.IntegrationConfig, error) {
	row := s.sqlite.DB.QueryRowContext(ctx, `
		SELECT id, name, category, description, enabled, icon_name, fields, status, last_sync
		FROM integrations WHERE id = ?`, id)

	cfg, err := scanIntegration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIntegrationNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// DeleteIntegration hard-deletes an integration entry
func (s *SQLiteIntegrationStorage) DeleteIntegration(ctx context.Context, id string) error {
	_, err := s.sqlite.DB.ExecContext(ctx, "DELETE FROM integrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	return nil
}

// SeedDefaults inserts catalog entries that are not yet present. Existing
// rows keep user-edited fields; seeding never overwrites.
func (s *SQLiteIntegrationStorage) SeedDefaults(ctx context.Context, defaults []core.IntegrationConfig) error {
	for i := range defaults {
		cfg := defaults[i]
		existing, err := s.GetIntegration(ctx, cfg.ID)
		if err != nil && !errors.Is(err, ErrIntegrationNotFound) {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.SaveIntegration(ctx, &cfg); err != nil {
			return err
		}
	}
	return nil
}

func scanIntegration(row scanner) (*core.IntegrationConfig, error) {
	var cfg core.IntegrationConfig
	var category, status string
	var enabled int
	var fields string

	err := row.Scan(&cfg.ID, &cfg.Name, &category, &cfg.Description,
		&enabled, &cfg.IconName, &fields, &status, &cfg.LastSync)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan integration: %w", err)
	}

	cfg.Category = core.IntegrationCategory(category)
	cfg.Status = core.IntegrationStatus(status)
	cfg.Enabled = enabled != 0
	if err := unmarshalColumn(fields, &cfg.Fields); err != nil {
		return nil, err
	}
	return &cfg, nil
}
