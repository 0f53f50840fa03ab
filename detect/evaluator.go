package detect

import (
	"strconv"
	"strings"

	"argus/core"
)

// EvaluateRule decides whether a rule matches an analysis result. Groups
// combine under the rule's logic op, conditions under each group's op.
//
// An empty groups list (and an empty conditions list within a group)
// evaluates to true. A rule saved with no conditions configured therefore
// alerts on every analysis; that match-everything default is load-bearing
// for existing rule sets and must not be "fixed" here.
func EvaluateRule(rule *core.AlertRule, result *core.AnalysisResult) bool {
	if len(rule.Groups) == 0 {
		return true
	}

	if rule.Logic == core.LogicOr {
		for i := range rule.Groups {
			if evaluateGroup(&rule.Groups[i], result) {
				return true
			}
		}
		return false
	}

	for i := range rule.Groups {
		if !evaluateGroup(&rule.Groups[i], result) {
			return false
		}
	}
	return true
}

func evaluateGroup(group *core.AlertGroup, result *core.AnalysisResult) bool {
	if len(group.Conditions) == 0 {
		return true
	}

	if group.Logic == core.LogicOr {
		for i := range group.Conditions {
			if evaluateCondition(&group.Conditions[i], result) {
				return true
			}
		}
		return false
	}

	for i := range group.Conditions {
		if !evaluateCondition(&group.Conditions[i], result) {
			return false
		}
	}
	return true
}

// evaluateCondition resolves the condition's field on the result and applies
// its operator. A malformed condition (unknown field or operator in
// persisted data) evaluates to false instead of raising: detection degrades
// safely rather than crashing the pipeline.
func evaluateCondition(cond *core.AlertCondition, result *core.AnalysisResult) bool {
	field := core.ParseConditionField(cond.Field)
	if field == core.FieldUnknown {
		return false
	}

	// List fields match when any element contains the value as a
	// case-insensitive substring, whatever operator was configured.
	if field.IsListField() {
		var list []string
		if field == core.FieldThreatActor {
			list = result.ThreatActors
		} else {
			list = result.MalwareFamilies
		}
		return listContains(list, string(cond.Value))
	}

	op := core.ParseConditionOperator(cond.Operator)
	if op == core.OpUnknown {
		return false
	}

	var actual string
	switch field {
	case core.FieldRiskScore:
		actual = strconv.Itoa(result.RiskScore)
	case core.FieldVerdict:
		actual = string(result.Verdict)
	case core.FieldType:
		actual = string(result.Type)
	case core.FieldIOC:
		actual = result.IOC
	default:
		return false
	}

	value := string(cond.Value)
	switch op {
	case core.OpEquals:
		return strings.EqualFold(actual, value)
	case core.OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(value))
	case core.OpGreaterThan, core.OpLessThan:
		left, okL := parseNumber(actual)
		right, okR := parseNumber(value)
		if !okL || !okR {
			return false
		}
		if op == core.OpGreaterThan {
			return left > right
		}
		return left < right
	}
	return false
}

func listContains(list []string, value string) bool {
	needle := strings.ToLower(value)
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), needle) {
			return true
		}
	}
	return false
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
