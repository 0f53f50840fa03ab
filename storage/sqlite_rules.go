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

// SQLiteRuleStorage persists detection rules
type SQLiteRuleStorage struct {
	sqlite *SQLite
	logger *zap.SugaredLogger
}

// NewSQLiteRuleStorage creates a new rule storage instance
func NewSQLiteRuleStorage(sqlite *SQLite, logger *zap.SugaredLogger) *SQLiteRuleStorage {
	return &SQLiteRuleStorage{sqlite: sqlite, logger: logger}
}

// CreateRule inserts a new rule
func (s *SQLiteRuleStorage) CreateRule(ctx context.Context, rule *core.AlertRule) error {
	groups, err := marshalColumn(rule.Groups)
	if err != nil {
		return err
	}
	conditions, err := marshalColumn(rule.Conditions)
	if err != nil {
		return err
	}
	channels, err := marshalColumn(rule.ActionChannels)
	if err != nil {
		return err
	}

	if rule.Created.IsZero() {
		rule.Created = time.Now().UTC()
	}

	_, err = s.sqlite.DB.ExecContext(ctx, `
		INSERT INTO rules (id, name, severity, enabled, logic, groups, conditions, action_channels, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			severity = excluded.severity,
			enabled = excluded.enabled,
			logic = excluded.logic,
			groups = excluded.groups,
			conditions = excluded.conditions,
			action_channels = excluded.action_channels`,
		rule.ID, rule.Name, string(rule.Severity), boolToInt(rule.Enabled),
		string(rule.Logic), groups, conditions, channels, rule.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// GetRules returns all rules in creation order, normalized to the grouped
// shape (legacy flat conditions become one implicit AND-group).
func (s *SQLiteRuleStorage) GetRules(ctx context.Context) ([]core.AlertRule, error) {
	return s.queryRules(ctx, `
		SELECT id, name, severity, enabled, logic, groups, conditions, action_channels, created
		FROM rules ORDER BY created DESC`)
}

// GetEnabledRules returns only enabled rules. The engine reads the rule set
// fresh on every evaluation, so a rule edited mid-flight takes effect on the
// next analysis.
func (s *SQLiteRuleStorage) GetEnabledRules(ctx context.Context) ([]core.AlertRule, error) {
	return s.queryRules(ctx, `
		SELECT id, name, severity, enabled, logic, groups, conditions, action_channels, created
		FROM rules WHERE enabled = 1 ORDER BY created DESC`)
}

func (s *SQLiteRuleStorage) queryRules(ctx context.Context, query string) ([]core.AlertRule, error) {
	rows, err := s.sqlite.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []core.AlertRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// GetRule retrieves one rule by ID
func (s *SQLiteRuleStorage) GetRule(ctx context.Context, id string) (*core.AlertRule, error) {
	row := s.sqlite.DB.QueryRowContext(ctx, `
		SELECT id, name, severity, enabled, logic, groups, conditions, action_channels, created
		FROM rules WHERE id = ?`, id)

	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// SetRuleEnabled flips a rule's enabled flag
func (s *SQLiteRuleStorage) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.sqlite.DB.ExecContext(ctx,
		"UPDATE rules SET enabled = ? WHERE id = ?", boolToInt(enabled), id)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// DeleteRule hard-deletes a rule; deleting a nonexistent ID is a no-op
func (s *SQLiteRuleStorage) DeleteRule(ctx context.Context, id string) error {
	_, err := s.sqlite.DB.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

func scanRule(row scanner) (*core.AlertRule, error) {
	var rule core.AlertRule
	var severity, logic string
	var enabled int
	var groups, conditions, channels string

	err := row.Scan(&rule.ID, &rule.Name, &severity, &enabled, &logic,
		&groups, &conditions, &channels, &rule.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	rule.Severity = core.Severity(severity)
	rule.Enabled = enabled != 0
	rule.Logic = core.ParseLogicOp(logic)

	if err := unmarshalColumn(groups, &rule.Groups); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(conditions, &rule.Conditions); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(channels, &rule.ActionChannels); err != nil {
		return nil, err
	}

	// Resolve the legacy flat shape once at load so the evaluator only
	// ever sees grouped rules.
	rule.Normalize()

	return &rule, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
