package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Severity levels for detection rules and the alerts they raise
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// IsValid reports whether the severity is a known level
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// LogicOp combines groups within a rule, or conditions within a group
type LogicOp string

const (
	LogicAnd LogicOp = "AND"
	LogicOr  LogicOp = "OR"
)

// ParseLogicOp resolves a persisted combinator string. Unknown values fall
// back to AND so that legacy rule documents keep their original semantics.
func ParseLogicOp(s string) LogicOp {
	if strings.EqualFold(s, string(LogicOr)) {
		return LogicOr
	}
	return LogicAnd
}

// ConditionField is the closed set of analysis fields a condition can test
type ConditionField int

const (
	FieldUnknown ConditionField = iota
	FieldRiskScore
	FieldVerdict
	FieldType
	FieldIOC
	FieldThreatActor
	FieldMalwareFamilies
)

var fieldNames = map[string]ConditionField{
	"riskScore":       FieldRiskScore,
	"verdict":         FieldVerdict,
	"type":            FieldType,
	"ioc":             FieldIOC,
	"threatActor":     FieldThreatActor,
	"malwareFamilies": FieldMalwareFamilies,
}

// ParseConditionField resolves a persisted field name. Unknown names map to
// FieldUnknown, which the evaluator treats as a non-match rather than an
// error: detection logic degrades instead of crashing on legacy data.
func ParseConditionField(s string) ConditionField {
	if f, ok := fieldNames[s]; ok {
		return f
	}
	return FieldUnknown
}

func (f ConditionField) String() string {
	for name, v := range fieldNames {
		if v == f {
			return name
		}
	}
	return "unknown"
}

// IsListField reports whether the field resolves to a list on the analysis
// record. List fields are always matched with substring containment.
func (f ConditionField) IsListField() bool {
	return f == FieldThreatActor || f == FieldMalwareFamilies
}

// ConditionOperator is the closed set of comparison operators
type ConditionOperator int

const (
	OpUnknown ConditionOperator = iota
	OpEquals
	OpContains
	OpGreaterThan
	OpLessThan
)

var operatorNames = map[string]ConditionOperator{
	"equals":      OpEquals,
	"contains":    OpContains,
	"greaterThan": OpGreaterThan,
	"lessThan":    OpLessThan,
}

// ParseConditionOperator resolves a persisted operator name, OpUnknown for
// anything unrecognized.
func ParseConditionOperator(s string) ConditionOperator {
	if op, ok := operatorNames[s]; ok {
		return op
	}
	return OpUnknown
}

func (op ConditionOperator) String() string {
	for name, v := range operatorNames {
		if v == op {
			return name
		}
	}
	return "unknown"
}

// ConditionValue is a condition's comparison operand. Rule documents carry
// it as either a string or a bare number; both decode to the string form the
// evaluator compares against, and it always marshals back out as a string.
type ConditionValue string

func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = ConditionValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("condition value must be a string or a number, got %s", data)
	}
	*v = ConditionValue(n.String())
	return nil
}

func (v *ConditionValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("condition value must be a scalar, got %s", node.Tag)
	}
	*v = ConditionValue(node.Value)
	return nil
}

// AlertCondition is a single field comparison within a group
type AlertCondition struct {
	ID       string         `json:"id" yaml:"id"`
	Field    string         `json:"field" yaml:"field"`
	Operator string         `json:"operator" yaml:"operator"`
	Value    ConditionValue `json:"value" yaml:"value"`
}

// AlertGroup is an ordered set of conditions combined under one logic op
type AlertGroup struct {
	ID         string           `json:"id" yaml:"id"`
	Logic      LogicOp          `json:"logic" yaml:"logic"`
	Conditions []AlertCondition `json:"conditions" yaml:"conditions"`
}

// AlertRule is one detection definition: groups of conditions combined
// AND/OR, evaluated against every finished analysis.
//
// Conditions is the legacy flat shape that predates Groups. It is retained
// for backward data compatibility and folded into a single implicit
// AND-group by Normalize; the evaluator only ever sees Groups.
type AlertRule struct {
	ID             string           `json:"id" yaml:"id"`
	Name           string           `json:"name" yaml:"name" validate:"required,max=200"`
	Severity       Severity         `json:"severity" yaml:"severity" validate:"required"`
	Enabled        bool             `json:"enabled" yaml:"enabled"`
	Logic          LogicOp          `json:"logic" yaml:"logic"`
	Groups         []AlertGroup     `json:"groups" yaml:"groups"`
	Conditions     []AlertCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	ActionChannels []string         `json:"action_channels,omitempty" yaml:"action_channels,omitempty"`
	Created        time.Time        `json:"created" yaml:"created"`
}

// Normalize resolves the legacy flat-conditions shape into the grouped
// representation. A rule carrying only a flat Conditions list becomes one
// AND-group; a rule that already has Groups is returned unchanged. An empty
// rule stays empty, which the engine deliberately treats as match-everything
// (see detect package).
func (r *AlertRule) Normalize() {
	if len(r.Groups) == 0 && len(r.Conditions) > 0 {
		r.Groups = []AlertGroup{{
			ID:         r.ID + "-legacy",
			Logic:      LogicAnd,
			Conditions: r.Conditions,
		}}
	}
	r.Conditions = nil
	if r.Logic == "" {
		r.Logic = LogicAnd
	}
	for i := range r.Groups {
		if r.Groups[i].Logic == "" {
			r.Groups[i].Logic = LogicAnd
		}
	}
}
