package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"argus/core"

	"go.uber.org/zap"
)

// SQLiteAlertStorage persists triggered alerts
type SQLiteAlertStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteAlertStorage creates a new alert storage instance
func NewSQLiteAlertStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteAlertStorage {
	return &SQLiteAlertStorage{sqlite: sqlite, logger: logger}
}

// InsertAlert writes one triggered alert. Each trigger is an independent
// durable write: the engine persists alert N before evaluating rule N+1.
func (s *SQLiteAlertStorage) InsertAlert(ctx context.Context, alert *core.TriggeredAlert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlite.DB.ExecContext(ctx, `
		INSERT INTO alerts (id, rule_id, rule_name, severity, ioc, analysis_id, timestamp, status, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.RuleID, alert.RuleName, string(alert.Severity),
		alert.IOC, alert.AnalysisID, alert.Timestamp.UTC(),
		string(alert.Status), alert.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlerts returns all alerts, newest first
func (s *SQLiteAlertStorage) GetAlerts(ctx context.Context) ([]core.TriggeredAlert, error) {
	rows, err := s.sqlite.DB.QueryContext(ctx, `
		SELECT id, rule_id, rule_name, severity, ioc, analysis_id, timestamp, status, details
		FROM alerts
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.TriggeredAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// GetAlert retrieves one alert by ID
func (s *SQLiteAlertStorage) GetAlert(ctx context.Context, id string) (*core.TriggeredAlert, error) {
	row := s.sqlite.DB.QueryRowContext(ctx, `
		SELECT id, rule_id, rule_name, severity, ioc, analysis_id, timestamp, status, details
		FROM alerts WHERE id = ?`, id)

	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

// UpdateAlertStatus persists a status change. Transition validity is
// enforced by the caller through the core state machine; storage only
// records the outcome.
func (s *SQLiteAlertStorage) UpdateAlertStatus(ctx context.Context, id string, status core.AlertStatus) error {
	res, err := s.sqlite.DB.ExecContext(ctx,
		"UPDATE alerts SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// GetAlertCount returns the number of stored alerts
func (s *SQLiteAlertStorage) GetAlertCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.sqlite.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

func scanAlert(row scanner) (*core.TriggeredAlert, error) {
	var alert core.TriggeredAlert
	var severity, status string

	err := row.Scan(&alert.ID, &alert.RuleID, &alert.RuleName, &severity,
		&alert.IOC, &alert.AnalysisID, &alert.Timestamp, &status, &alert.Details)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	alert.Severity = core.Severity(severity)
	alert.Status = core.AlertStatus(status)
	return &alert, nil
}
