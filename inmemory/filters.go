package inmemory

import (
	"fmt"
	"strings"

	"github.com/letmevibethatforyou/hitview"
)

// matchesFilters checks if a document matches all the filter expressions.
func matchesFilters(doc Document, filters []hitview.Expression) bool {
	for _, filter := range filters {
		if !evaluateExpression(doc, filter) {
			return false
		}
	}
	return true
}

func evaluateExpression(doc Document, expr hitview.Expression) bool {
	switch e := expr.(type) {
	case hitview.AndExpr:
		for _, inner := range e.Exprs {
			if !evaluateExpression(doc, inner) {
				return false
			}
		}
		return true
	case hitview.OrExpr:
		for _, inner := range e.Exprs {
			if evaluateExpression(doc, inner) {
				return true
			}
		}
		return false
	case hitview.NotExpr:
		return !evaluateExpression(doc, e.Inner)
	case hitview.EqExpr:
		return evaluateEq(doc, e.Field, e.Value)
	case hitview.NeExpr:
		return !evaluateEq(doc, e.Field, e.Value)
	case hitview.ExistsExpr:
		value, ok := lookupPath(doc.Fields, e.Field)
		return ok && value != nil
	default:
		// unknown expressions do not filter
		return true
	}
}

// evaluateEq matches a facet value. A list-valued facet matches when any
// element does, the way a hosted index treats array facets.
func evaluateEq(doc Document, field string, want any) bool {
	value, ok := lookupPath(doc.Fields, field)
	if !ok {
		return want == nil
	}

	if list, ok := value.([]any); ok {
		for _, item := range list {
			if compareEqual(item, want) {
				return true
			}
		}
		return false
	}
	return compareEqual(value, want)
}

// lookupPath resolves a dotted path such as "tag_categories.tests". A key
// that itself contains dots wins over the nested walk.
func lookupPath(fields map[string]any, path string) (any, bool) {
	if value, ok := fields[path]; ok {
		return value, true
	}

	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	nested, ok := fields[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return lookupPath(nested, rest)
}

// compareEqual checks if two values are equal.
func compareEqual(v1, v2 any) bool {
	if v1 == nil || v2 == nil {
		return v1 == v2
	}

	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			return f1 == f2
		}
	}

	return fmt.Sprintf("%v", v1) == fmt.Sprintf("%v", v2)
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
