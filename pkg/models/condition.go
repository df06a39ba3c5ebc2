package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Operator is a comparison applied between a payload value and the condition value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIn          Operator = "in"
)

func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan, OpIn:
		return true
	default:
		return false
	}
}

// Condition is one node of a rule's predicate tree, decoded once at rule load.
// It is either a literal (implicit equality against the payload value) or a
// structured {operator, value} comparison.
type Condition struct {
	Literal    any
	Operator   Operator
	Value      any
	Structured bool
}

// Literal values serialize as the bare value; structured conditions as
// {"operator": ..., "value": ...}. Any JSON object is treated as structured,
// with the operator defaulting to equals when absent.
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var structured struct {
			Operator Operator `json:"operator"`
			Value    any      `json:"value"`
		}

		if err := json.Unmarshal(data, &structured); err != nil {
			return fmt.Errorf("failed to decode structured condition: %w", err)
		}

		if structured.Operator == "" {
			structured.Operator = OpEquals
		}

		*c = Condition{Operator: structured.Operator, Value: structured.Value, Structured: true}

		return nil
	}

	var literal any
	if err := json.Unmarshal(data, &literal); err != nil {
		return fmt.Errorf("failed to decode literal condition: %w", err)
	}

	*c = Condition{Literal: literal}

	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if !c.Structured {
		return json.Marshal(c.Literal)
	}

	return json.Marshal(map[string]any{
		"operator": c.Operator,
		"value":    c.Value,
	})
}

// ConditionSet maps event-field names to conditions. All entries must be
// satisfied for a rule to match (conjunction, no OR at this level).
type ConditionSet map[string]Condition

// Evaluate reports whether the payload satisfies every condition in the set.
// A key missing from the payload, an unknown operator, or any type mismatch
// resolves to false; evaluation never returns an error so that a malformed
// rule cannot block the rules evaluated after it. Pure and safe for
// concurrent use.
func (cs ConditionSet) Evaluate(payload map[string]any) bool {
	for key, condition := range cs {
		value, ok := payload[key]
		if !ok {
			return false
		}

		if !condition.matches(value) {
			return false
		}
	}

	return true
}

func (c Condition) matches(payloadValue any) bool {
	if !c.Structured {
		return looseEqual(payloadValue, c.Literal)
	}

	switch c.Operator {
	case OpEquals:
		return looseEqual(payloadValue, c.Value)
	case OpNotEquals:
		return !looseEqual(payloadValue, c.Value)
	case OpContains:
		return strings.Contains(Stringify(payloadValue), Stringify(c.Value))
	case OpGreaterThan:
		left, leftOK := toFloat(payloadValue)
		right, rightOK := toFloat(c.Value)

		return leftOK && rightOK && left > right
	case OpLessThan:
		left, leftOK := toFloat(payloadValue)
		right, rightOK := toFloat(c.Value)

		return leftOK && rightOK && left < right
	case OpIn:
		collection, ok := c.Value.([]any)
		if !ok {
			return false
		}

		for _, candidate := range collection {
			if looseEqual(payloadValue, candidate) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// looseEqual compares values across the numeric representations JSON decoding
// produces (float64 for every number) and falls back to deep equality for
// composite values.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if aNum, aOK := toFloat(a); aOK {
		if bNum, bOK := toFloat(b); bOK {
			return aNum == bNum
		}

		return false
	}

	if aStr, ok := a.(string); ok {
		bStr, ok := b.(string)

		return ok && aStr == bStr
	}

	if aBool, ok := a.(bool); ok {
		bBool, ok := b.(bool)

		return ok && aBool == bBool
	}

	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

// Stringify renders a payload or parameter value the way templates and
// contains-comparisons see it.
func Stringify(v any) string {
	if v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
