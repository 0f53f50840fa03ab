package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAlertRule_Normalize_LegacyConditions(t *testing.T) {
	rule := AlertRule{
		ID:   "rule-1",
		Name: "High risk",
		Conditions: []AlertCondition{
			{ID: "c1", Field: "riskScore", Operator: "greaterThan", Value: "80"},
			{ID: "c2", Field: "verdict", Operator: "equals", Value: "CRITICAL"},
		},
	}

	rule.Normalize()

	require.Len(t, rule.Groups, 1)
	assert.Equal(t, "rule-1-legacy", rule.Groups[0].ID)
	assert.Equal(t, LogicAnd, rule.Groups[0].Logic)
	assert.Len(t, rule.Groups[0].Conditions, 2)
	assert.Nil(t, rule.Conditions)
	assert.Equal(t, LogicAnd, rule.Logic)
}

func TestAlertRule_Normalize_GroupsTakePrecedence(t *testing.T) {
	rule := AlertRule{
		ID:    "rule-2",
		Logic: LogicOr,
		Groups: []AlertGroup{
			{ID: "g1", Logic: LogicOr, Conditions: []AlertCondition{
				{Field: "type", Operator: "equals", Value: "ip"},
			}},
		},
		Conditions: []AlertCondition{
			{Field: "riskScore", Operator: "greaterThan", Value: "50"},
		},
	}

	rule.Normalize()

	require.Len(t, rule.Groups, 1)
	assert.Equal(t, "g1", rule.Groups[0].ID)
	assert.Nil(t, rule.Conditions)
	assert.Equal(t, LogicOr, rule.Logic)
}

func TestAlertRule_Normalize_EmptyRule(t *testing.T) {
	rule := AlertRule{ID: "rule-3"}

	rule.Normalize()

	assert.Empty(t, rule.Groups)
	assert.Equal(t, LogicAnd, rule.Logic)
}

func TestAlertRule_Normalize_DefaultsGroupLogic(t *testing.T) {
	rule := AlertRule{
		Groups: []AlertGroup{{ID: "g1"}},
	}

	rule.Normalize()

	assert.Equal(t, LogicAnd, rule.Groups[0].Logic)
}

func TestParseConditionField(t *testing.T) {
	assert.Equal(t, FieldRiskScore, ParseConditionField("riskScore"))
	assert.Equal(t, FieldVerdict, ParseConditionField("verdict"))
	assert.Equal(t, FieldThreatActor, ParseConditionField("threatActor"))
	assert.Equal(t, FieldUnknown, ParseConditionField("nonsense"))
	assert.Equal(t, FieldUnknown, ParseConditionField(""))
}

func TestParseConditionOperator(t *testing.T) {
	assert.Equal(t, OpEquals, ParseConditionOperator("equals"))
	assert.Equal(t, OpGreaterThan, ParseConditionOperator("greaterThan"))
	assert.Equal(t, OpUnknown, ParseConditionOperator("matches"))
}

func TestParseLogicOp(t *testing.T) {
	assert.Equal(t, LogicOr, ParseLogicOp("OR"))
	assert.Equal(t, LogicOr, ParseLogicOp("or"))
	assert.Equal(t, LogicAnd, ParseLogicOp("AND"))
	assert.Equal(t, LogicAnd, ParseLogicOp(""))
	assert.Equal(t, LogicAnd, ParseLogicOp("XOR"))
}

func TestAlertRule_DecodeNumericConditionValue(t *testing.T) {
	doc := `{
		"name": "High risk score",
		"severity": "HIGH",
		"groups": [{
			"id": "g1",
			"logic": "AND",
			"conditions": [
				{"id": "c1", "field": "riskScore", "operator": "greaterThan", "value": 90},
				{"id": "c2", "field": "verdict", "operator": "equals", "value": "CRITICAL"}
			]
		}]
	}`

	var rule AlertRule
	require.NoError(t, json.Unmarshal([]byte(doc), &rule))
	assert.Equal(t, ConditionValue("90"), rule.Groups[0].Conditions[0].Value)
	assert.Equal(t, ConditionValue("CRITICAL"), rule.Groups[0].Conditions[1].Value)

	// Floats keep their textual form.
	var cond AlertCondition
	require.NoError(t, json.Unmarshal([]byte(`{"field":"riskScore","operator":"lessThan","value":0.5}`), &cond))
	assert.Equal(t, ConditionValue("0.5"), cond.Value)
}

func TestAlertRule_DecodeConditionValueRejectsNonScalar(t *testing.T) {
	var cond AlertCondition
	err := json.Unmarshal([]byte(`{"field":"ioc","operator":"contains","value":["a","b"]}`), &cond)
	require.Error(t, err)
}

func TestAlertRule_DecodeNumericConditionValueYAML(t *testing.T) {
	doc := `
name: High risk score
severity: HIGH
groups:
  - id: g1
    logic: AND
    conditions:
      - id: c1
        field: riskScore
        operator: greaterThan
        value: 90
      - id: c2
        field: ioc
        operator: contains
        value: "45.33."
`
	var rule AlertRule
	require.NoError(t, yaml.Unmarshal([]byte(doc), &rule))
	assert.Equal(t, ConditionValue("90"), rule.Groups[0].Conditions[0].Value)
	assert.Equal(t, ConditionValue("45.33."), rule.Groups[0].Conditions[1].Value)

	var cond AlertCondition
	err := yaml.Unmarshal([]byte("field: ioc\noperator: contains\nvalue: [a, b]\n"), &cond)
	require.Error(t, err)
}

func TestConditionField_IsListField(t *testing.T) {
	assert.True(t, FieldThreatActor.IsListField())
	assert.True(t, FieldMalwareFamilies.IsListField())
	assert.False(t, FieldRiskScore.IsListField())
	assert.False(t, FieldIOC.IsListField())
}
