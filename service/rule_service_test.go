package service

import (
	"context"
	"path/filepath"
	"testing"

	"argus/core"
	"argus/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRuleStorage struct {
	rules map[string]*core.AlertRule
	order []string
}

func newStubRuleStorage() *stubRuleStorage {
	return &stubRuleStorage{rules: make(map[string]*core.AlertRule)}
}

func (s *stubRuleStorage) CreateRule(ctx context.Context, rule *core.AlertRule) error {
	if _, exists := s.rules[rule.ID]; !exists {
		s.order = append(s.order, rule.ID)
	}
	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}
func (s *stubRuleStorage) GetRules(ctx context.Context) ([]core.AlertRule, error) {
	var out []core.AlertRule
	for _, id := range s.order {
		out = append(out, *s.rules[id])
	}
	return out, nil
}
func (s *stubRuleStorage) GetEnabledRules(ctx context.Context) ([]core.AlertRule, error) {
	var out []core.AlertRule
	for _, id := range s.order {
		if s.rules[id].Enabled {
			out = append(out, *s.rules[id])
		}
	}
	return out, nil
}
func (s *stubRuleStorage) GetRule(ctx context.Context, id string) (*core.AlertRule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return nil, storage.ErrRuleNotFound
	}
	copied := *rule
	return &copied, nil
}
func (s *stubRuleStorage) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	rule, ok := s.rules[id]
	if !ok {
		return storage.ErrRuleNotFound
	}
	rule.Enabled = enabled
	return nil
}
func (s *stubRuleStorage) DeleteRule(ctx context.Context, id string) error {
	delete(s.rules, id)
	return nil
}

func TestRuleService_CreateRule(t *testing.T) {
	store := newStubRuleStorage()
	svc := NewRuleService(store, zap.NewNop().Sugar())

	created, err := svc.CreateRule(context.Background(), &core.AlertRule{
		Name: "High risk indicators",
		Conditions: []core.AlertCondition{
			{ID: "c1", Field: "riskScore", Operator: "greaterThan", Value: "70"},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Created.IsZero())
	assert.Equal(t, core.SeverityMedium, created.Severity, "severity defaults when omitted")

	// The legacy flat conditions are folded into a group before persistence.
	require.Len(t, created.Groups, 1)
	assert.Nil(t, created.Conditions)
}

func TestRuleService_CreateRule_RequiresName(t *testing.T) {
	svc := NewRuleService(newStubRuleStorage(), zap.NewNop().Sugar())

	_, err := svc.CreateRule(context.Background(), &core.AlertRule{Severity: core.SeverityLow})
	require.Error(t, err)

	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
}

func TestRuleService_CreateRule_RejectsUnknownSeverity(t *testing.T) {
	svc := NewRuleService(newStubRuleStorage(), zap.NewNop().Sugar())

	_, err := svc.CreateRule(context.Background(), &core.AlertRule{
		Name:     "bad severity",
		Severity: "URGENT",
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestRuleService_ToggleRule(t *testing.T) {
	store := newStubRuleStorage()
	svc := NewRuleService(store, zap.NewNop().Sugar())
	ctx := context.Background()

	created, err := svc.CreateRule(ctx, &core.AlertRule{Name: "toggle me", Enabled: true})
	require.NoError(t, err)

	toggled, err := svc.ToggleRule(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	toggled, err = svc.ToggleRule(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Enabled)

	_, err = svc.ToggleRule(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrRuleNotFound)
}

func TestRuleService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.yaml")

	source := NewRuleService(newStubRuleStorage(), zap.NewNop().Sugar())
	_, err := source.CreateRule(ctx, &core.AlertRule{
		Name:     "Known C2",
		Severity: core.SeverityCritical,
		Enabled:  true,
		Groups: []core.AlertGroup{{
			ID:    "g1",
			Logic: core.LogicOr,
			Conditions: []core.AlertCondition{
				{ID: "c1", Field: "ioc", Operator: "contains", Value: "45.33."},
				{ID: "c2", Field: "verdict", Operator: "equals", Value: "CRITICAL"},
			},
		}},
		ActionChannels: []string{"soc-slack"},
	})
	require.NoError(t, err)
	_, err = source.CreateRule(ctx, &core.AlertRule{Name: "Catch all", Severity: core.SeverityLow})
	require.NoError(t, err)

	exported, err := source.ExportRules(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, exported)

	destStore := newStubRuleStorage()
	dest := NewRuleService(destStore, zap.NewNop().Sugar())
	imported, err := dest.ImportRules(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	rules, err := dest.GetRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Known C2", rules[0].Name)
	assert.Equal(t, core.LogicOr, rules[0].Groups[0].Logic)
	assert.Equal(t, []string{"soc-slack"}, rules[0].ActionChannels)
}

func TestRuleService_ImportRules_MissingFile(t *testing.T) {
	svc := NewRuleService(newStubRuleStorage(), zap.NewNop().Sugar())

	_, err := svc.ImportRules(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
