package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"argus/core"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SQLiteAnalysisStorage persists analysis results
type SQLiteAnalysisStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteAnalysisStorage creates a new analysis storage instance
func NewSQLiteAnalysisStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteAnalysisStorage {
	return &SQLiteAnalysisStorage{sqlite: sqlite, logger: logger}
}

// SaveAnalysis upserts an analysis by primary key. A record arriving without
// an ID is assigned one before the write; the effective ID is returned so it
// becomes the record's durable identity.
func (s *SQLiteAnalysisStorage) SaveAnalysis(ctx context.Context, result *core.AnalysisResult) (string, error) {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now().UTC()
	}

	mitigation, err := marshalColumn(result.MitigationSteps)
	if err != nil {
		return "", err
	}
	technical, err := marshalColumn(result.TechnicalDetails)
	if err != nil {
		return "", err
	}
	actors, err := marshalColumn(result.ThreatActors)
	if err != nil {
		return "", err
	}
	actorDetails, err := marshalColumn(result.ThreatActorDetails)
	if err != nil {
		return "", err
	}
	families, err := marshalColumn(result.MalwareFamilies)
	if err != nil {
		return "", err
	}
	intel, err := marshalColumn(result.ExternalIntel)
	if err != nil {
		return "", err
	}

	_, err = s.sqlite.DB.ExecContext(ctx, `
		INSERT INTO analyses (
			id, ioc, type, risk_score, verdict, description, mitigation_steps,
			technical_details, threat_actors, threat_actor_details,
			malware_families, geolocation, external_intel, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ioc = excluded.ioc,
			type = excluded.type,
			risk_score = excluded.risk_score,
			verdict = excluded.verdict,
			description = excluded.description,
			mitigation_steps = excluded.mitigation_steps,
			technical_details = excluded.technical_details,
			threat_actors = excluded.threat_actors,
			threat_actor_details = excluded.threat_actor_details,
			malware_families = excluded.malware_families,
			geolocation = excluded.geolocation,
			external_intel = excluded.external_intel,
			timestamp = excluded.timestamp`,
		result.ID, result.IOC, string(result.Type), result.RiskScore,
		string(result.Verdict), result.Description, mitigation, technical,
		actors, actorDetails, families, result.Geolocation, intel,
		result.Timestamp.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}

	return result.ID, nil
}

// GetAnalyses returns all analyses, newest first
func (s *SQLiteAnalysisStorage) GetAnalyses(ctx context.Context) ([]core.AnalysisResult, error) {
	rows, err := s.sqlite.DB.QueryContext(ctx, `
		SELECT id, ioc, type, risk_score, verdict, description, mitigation_steps,
			technical_details, threat_actors, threat_actor_details,
			malware_families, geolocation, external_intel, timestamp
		FROM analyses
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var results []core.AnalysisResult
	for rows.Next() {
		result, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, rows.Err()
}

// GetAnalysis retrieves one analysis by ID. Absence is ErrAnalysisNotFound,
// not a storage failure.
func (s *SQLiteAnalysisStorage) GetAnalysis(ctx context.Context, id string) (*core.AnalysisResult, error) {
	row := s.sqlite.DB.QueryRowContext(ctx, `
		SELECT id, ioc, type, risk_score, verdict, description, mitigation_steps,
			technical_details, threat_actors, threat_actor_details,
			malware_families, geolocation, external_intel, timestamp
		FROM analyses
		WHERE id = ?`, id)

	result, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return result, nil
}

// DeleteAnalysis hard-deletes an analysis. Deleting a nonexistent ID is a
// no-op. Alerts referencing the analysis keep their dangling back-reference.
func (s *SQLiteAnalysisStorage) DeleteAnalysis(ctx context.Context, id string) error {
	_, err := s.sqlite.DB.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

// GetAnalysisCount returns the number of stored analyses
func (s *SQLiteAnalysisStorage) GetAnalysisCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.sqlite.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan code
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row scanner) (*core.AnalysisResult, error) {
	var result core.AnalysisResult
	var typ, verdict string
	var mitigation, technical, actors, actorDetails, families, intel string

	err := row.Scan(
		&result.ID, &result.IOC, &typ, &result.RiskScore, &verdict,
		&result.Description, &mitigation, &technical, &actors, &actorDetails,
		&families, &result.Geolocation, &intel, &result.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	result.Type = core.IndicatorType(typ)
	result.Verdict = core.Verdict(verdict)

	if err := unmarshalColumn(mitigation, &result.MitigationSteps); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(technical, &result.TechnicalDetails); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(actors, &result.ThreatActors); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(actorDetails, &result.ThreatActorDetails); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(families, &result.MalwareFamilies); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(intel, &result.ExternalIntel); err != nil {
		return nil, err
	}

	return &result, nil
}
