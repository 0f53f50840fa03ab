package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"argus/core"
	"argus/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const maxRuleImportFileSize = 10 * 1024 * 1024 // protection against memory exhaustion

// RuleService provides rule CRUD on top of storage, assigning identities
// and creation timestamps and validating user input before persistence.
type RuleService struct {
	rules    storage.RuleStorageInterface
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewRuleService creates a rule service
func NewRuleService(rules storage.RuleStorageInterface, logger *zap.SugaredLogger) *RuleService {
	if rules == nil {
		panic("rule storage is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &RuleService{
		rules:    rules,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateRule validates the partial rule, assigns an ID and creation
// timestamp, and persists it. Missing name or severity is a blocking
// validation error.
func (s *RuleService) CreateRule(ctx context.Context, rule *core.AlertRule) (*core.AlertRule, error) {
	if rule.Name == "" {
		return nil, &core.ValidationError{Field: "name", Message: "rule name is required"}
	}
	if rule.Severity == "" {
		rule.Severity = core.SeverityMedium
	}
	if !rule.Severity.IsValid() {
		return nil, &core.ValidationError{Field: "severity", Message: "unknown severity: " + string(rule.Severity)}
	}
	if err := s.validate.Struct(rule); err != nil {
		return nil, &core.ValidationError{Message: err.Error()}
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.Created = time.Now().UTC()
	rule.Normalize()

	if err := s.rules.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Infow("Rule created", "rule_id", rule.ID, "name", rule.Name, "severity", rule.Severity)
	return rule, nil
}

// GetRules returns all rules
func (s *RuleService) GetRules(ctx context.Context) ([]core.AlertRule, error) {
	return s.rules.GetRules(ctx)
}

// GetRule returns one rule by ID
func (s *RuleService) GetRule(ctx context.Context, id string) (*core.AlertRule, error) {
	return s.rules.GetRule(ctx, id)
}

// ToggleRule flips a rule's enabled flag
func (s *RuleService) ToggleRule(ctx context.Context, id string) (*core.AlertRule, error) {
	rule, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.rules.SetRuleEnabled(ctx, id, !rule.Enabled); err != nil {
		return nil, err
	}
	rule.Enabled = !rule.Enabled
	return rule, nil
}

// DeleteRule hard-deletes a rule by ID
func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	return s.rules.DeleteRule(ctx, id)
}

// ruleDocument is the YAML import/export envelope
type ruleDocument struct {
	Rules []core.AlertRule `yaml:"rules"`
}

// ExportRules writes every rule to a YAML document
func (s *RuleService) ExportRules(ctx context.Context, path string) (int, error) {
	rules, err := s.rules.GetRules(ctx)
	if err != nil {
		return 0, err
	}

	data, err := yaml.Marshal(ruleDocument{Rules: rules})
	if err != nil {
		return 0, fmt.Errorf("failed to encode rules: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return 0, fmt.Errorf("failed to write rules file: %w", err)
	}
	return len(rules), nil
}

// ImportRules loads rules from a YAML document, assigning IDs to entries
// that lack them. Existing rules with matching IDs are overwritten.
func (s *RuleService) ImportRules(ctx context.Context, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat rules file: %w", err)
	}
	if info.Size() > maxRuleImportFileSize {
		return 0, fmt.Errorf("rules file exceeds %d bytes", maxRuleImportFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse rules file: %w", err)
	}

	imported := 0
	for i := range doc.Rules {
		rule := &doc.Rules[i]
		if rule.Name == "" {
			return imported, &core.ValidationError{Field: "name", Message: fmt.Sprintf("rule %d has no name", i)}
		}
		if rule.ID == "" {
			rule.ID = uuid.New().String()
		}
		if rule.Created.IsZero() {
			rule.Created = time.Now().UTC()
		}
		rule.Normalize()
		if err := s.rules.CreateRule(ctx, rule); err != nil {
			return imported, err
		}
		imported++
	}

	s.logger.Infow("Rules imported", "count", imported, "path", path)
	return imported, nil
}
