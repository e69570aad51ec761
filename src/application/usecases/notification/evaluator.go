package notification

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// comparison operators, two-character forms first so ">=" is not read as ">"
var comparisonOperators = []string{"==", "!=", ">=", "<=", ">", "<"}

// EvaluateCondition evaluates a restricted boolean expression against a
// record's fields. The grammar is a disjunction of conjunctions of
// comparison clauses:
//
//	status == 'Open' && amount > 1000 || priority == 'High'
//
// Field names are bare identifiers resolved against the field map,
// literals are single or double quoted strings, numbers or booleans.
// Nothing else is allowed, so rule authors cannot run arbitrary code.
func EvaluateCondition(expression string, fields map[string]interface{}) (bool, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return true, nil
	}

	for _, disjunct := range strings.Split(expression, "||") {
		allTrue := true
		for _, clause := range strings.Split(disjunct, "&&") {
			ok, err := evaluateClause(clause, fields)
			if err != nil {
				return false, err
			}
			if !ok {
				allTrue = false
				break
			}
		}
		if allTrue {
			return true, nil
		}
	}
	return false, nil
}

func evaluateClause(clause string, fields map[string]interface{}) (bool, error) {
	clause = strings.TrimSpace(clause)

	var operator string
	var operatorIndex int = -1
	for _, op := range comparisonOperators {
		if idx := strings.Index(clause, op); idx >= 0 {
			operator = op
			operatorIndex = idx
			break
		}
	}
	if operatorIndex < 0 {
		return false, fmt.Errorf("condition clause %q has no comparison operator", clause)
	}

	fieldName := strings.TrimSpace(clause[:operatorIndex])
	literal := strings.TrimSpace(clause[operatorIndex+len(operator):])
	if fieldName == "" || literal == "" {
		return false, fmt.Errorf("condition clause %q is incomplete", clause)
	}
	if !isIdentifier(fieldName) {
		return false, fmt.Errorf("condition clause %q must start with a field name", clause)
	}

	fieldValue, exists := fields[fieldName]
	if !exists {
		return false, fmt.Errorf("condition references unknown field %q", fieldName)
	}

	return compare(fieldValue, operator, literal)
}

func compare(fieldValue interface{}, operator string, literal string) (bool, error) {
	// quoted literals force string comparison
	if unquoted, ok := unquote(literal); ok {
		return compareStrings(fmt.Sprint(fieldValue), operator, unquoted)
	}

	if literal == "true" || literal == "false" {
		fieldBool, ok := fieldValue.(bool)
		if !ok {
			fieldBool = fmt.Sprint(fieldValue) == "true"
		}
		wanted := literal == "true"
		switch operator {
		case "==":
			return fieldBool == wanted, nil
		case "!=":
			return fieldBool != wanted, nil
		}
		return false, errors.New("booleans only support == and !=")
	}

	literalNumber, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return false, fmt.Errorf("invalid literal %q in condition", literal)
	}
	fieldNumber, err := toFloat(fieldValue)
	if err != nil {
		return false, err
	}

	switch operator {
	case "==":
		return fieldNumber == literalNumber, nil
	case "!=":
		return fieldNumber != literalNumber, nil
	case ">":
		return fieldNumber > literalNumber, nil
	case ">=":
		return fieldNumber >= literalNumber, nil
	case "<":
		return fieldNumber < literalNumber, nil
	case "<=":
		return fieldNumber <= literalNumber, nil
	}
	return false, fmt.Errorf("unsupported operator %q", operator)
}

func compareStrings(fieldValue string, operator string, literal string) (bool, error) {
	switch operator {
	case "==":
		return fieldValue == literal, nil
	case "!=":
		return fieldValue != literal, nil
	case ">":
		return fieldValue > literal, nil
	case ">=":
		return fieldValue >= literal, nil
	case "<":
		return fieldValue < literal, nil
	case "<=":
		return fieldValue <= literal, nil
	}
	return false, fmt.Errorf("unsupported operator %q", operator)
}

func unquote(literal string) (string, bool) {
	if len(literal) >= 2 {
		first, last := literal[0], literal[len(literal)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return literal[1 : len(literal)-1], true
		}
	}
	return "", false
}

func isIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(name) > 0
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	case nil:
		return 0, errors.New("cannot compare nil field numerically")
	}
	return strconv.ParseFloat(fmt.Sprint(value), 64)
}
