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

// SQLiteReportStorage persists generated reports
type SQLiteReportStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteReportStorage creates a new report storage instance
func NewSQLiteReportStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteReportStorage {
	return &SQLiteReportStorage{sqlite: sqlite, logger: logger}
}

// SaveReport upserts a report by ID
func (s *SQLiteReportStorage) SaveReport(ctx context.Context, report *core.ReportConfig) error {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now().UTC()
	}

	_, err := s.sqlite.DB.ExecContext(ctx, `
		INSERT INTO reports (id, title, type, generated_at, status, summary)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			type = excluded.type,
			status = excluded.status,
			summary = excluded.summary`,
		report.ID, report.Title, report.Type, report.GeneratedAt.UTC(),
		string(report.Status), report.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReports returns all reports, newest first
func (s *SQLiteReportStorage) GetReports(ctx context.Context) ([]core.ReportConfig, error) {
	rows, err := s.sqlite.DB.QueryContext(ctx, `
		SELECT id, title, type, generated_at, status, summary
		FROM reports ORDER BY generated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []core.ReportConfig
	for rows.Next() {
		var r core.ReportConfig
		var status string
		if err := rows.Scan(&r.ID, &r.Title, &r.Type, &r.GeneratedAt, &status, &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r.Status = core.ReportStatus(status)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetReport retrieves one report by ID
func (s *SQLiteReportStorage) GetReport(ctx context.Context, id string) (*core.ReportConfig, error) {
	var r core.ReportConfig
	var status string
	err := s.sqlite.DB.QueryRowContext(ctx, `
		SELECT id, title, type, generated_at, status, summary
		FROM reports WHERE id = ?`, id).
		Scan(&r.ID, &r.Title, &r.Type, &r.GeneratedAt, &status, &r.Summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	r.Status = core.ReportStatus(status)
	return &r, nil
}

// DeleteReport hard-deletes a report
func (s *SQLiteReportStorage) DeleteReport(ctx context.Context, id string) error {
	_, err := s.sqlite.DB.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}
