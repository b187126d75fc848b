package ops

import (
	"github.com/chromalens/chromalens-go/internal/apierr"
)

// Metadata filter grammar. A filter object maps field names to either a
// literal (implicit equality) or an operator object, and may additionally
// carry at most one logical combinator.
var (
	comparisonOps = map[string]bool{
		"$eq": true, "$ne": true,
		"$gt": true, "$gte": true,
		"$lt": true, "$lte": true,
		"$in": true, "$nin": true,
	}
	combinatorOps = map[string]bool{
		"$and": true, "$or": true, "$not": true,
	}
	documentOps = map[string]bool{
		"$contains": true, "$not_contains": true,
	}
)

// ValidateWhere checks a metadata filter before it leaves the process. A nil
// filter is valid and means "match everything".
func ValidateWhere(where map[string]any) error {
	if where == nil {
		return nil
	}
	return validateFilter(where, comparisonOps, ValidateWhere)
}

// ValidateWhereDocument checks a document-content filter. Document filters
// use the $contains family instead of comparisons but share the combinator
// grammar.
func ValidateWhereDocument(where map[string]any) error {
	if where == nil {
		return nil
	}
	if len(where) == 0 {
		return apierr.Validation("where_document must not be an empty object")
	}
	combinators := 0
	for key, value := range where {
		switch {
		case combinatorOps[key]:
			combinators++
			if combinators > 1 {
				return apierr.Validation("where_document must use at most one logical combinator per object")
			}
			if err := validateCombinator(key, value, ValidateWhereDocument); err != nil {
				return err
			}
		case documentOps[key]:
			if _, ok := value.(string); !ok {
				return apierr.Validationf("where_document operator %s requires a string operand", key)
			}
		default:
			return apierr.Validationf("where_document key %q is not a recognized operator", key)
		}
	}
	return nil
}

func validateFilter(where map[string]any, operators map[string]bool, recurse func(map[string]any) error) error {
	if len(where) == 0 {
		return apierr.Validation("where must not be an empty object")
	}
	combinators := 0
	for key, value := range where {
		switch {
		case combinatorOps[key]:
			combinators++
			if combinators > 1 {
				return apierr.Validation("where must use at most one logical combinator per object")
			}
			if err := validateCombinator(key, value, recurse); err != nil {
				return err
			}
		case len(key) > 0 && key[0] == '$':
			return apierr.Validationf("where key %q is not a recognized operator", key)
		default:
			if err := validateCondition(key, value, operators); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateCombinator checks $and/$or operand lists and the $not operand
// object, recursing with the grammar of the enclosing filter.
func validateCombinator(op string, value any, recurse func(map[string]any) error) error {
	if op == "$not" {
		inner, ok := value.(map[string]any)
		if !ok {
			return apierr.Validation("$not requires a filter object operand")
		}
		return recurse(inner)
	}
	clauses, ok := value.([]any)
	if !ok || len(clauses) == 0 {
		return apierr.Validationf("%s requires a non-empty list of filter objects", op)
	}
	for _, clause := range clauses {
		inner, ok := clause.(map[string]any)
		if !ok {
			return apierr.Validationf("%s operands must be filter objects", op)
		}
		if err := recurse(inner); err != nil {
			return err
		}
	}
	return nil
}

func validateCondition(field string, value any, operators map[string]bool) error {
	operand, ok := value.(map[string]any)
	if !ok {
		// A bare literal is an implicit $eq.
		return validateLiteral(field, value)
	}
	if len(operand) == 0 {
		return apierr.Validationf("condition for field %q must not be empty", field)
	}
	for op, v := range operand {
		if !operators[op] {
			return apierr.Validationf("operator %q on field %q is not supported", op, field)
		}
		if op == "$in" || op == "$nin" {
			list, ok := v.([]any)
			if !ok || len(list) == 0 {
				return apierr.Validationf("operator %s on field %q requires a non-empty list", op, field)
			}
			for _, item := range list {
				if err := validateLiteral(field, item); err != nil {
					return err
				}
			}
			continue
		}
		if err := validateLiteral(field, v); err != nil {
			return err
		}
	}
	return nil
}

// validateLiteral accepts the scalar types the server indexes.
func validateLiteral(field string, v any) error {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return nil
	default:
		return apierr.Validationf("field %q requires a string, number or boolean operand, got %T", field, v)
	}
}
