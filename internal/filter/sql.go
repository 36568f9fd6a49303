package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/storelink/products-api/internal/model"
)

type fieldKind uint8

const (
	kindText fieldKind = iota
	kindInt
	kindTime
)

// columns maps wire field names to table columns and their SQL kinds.
var columns = map[string]struct {
	name string
	kind fieldKind
}{
	"id":               {"id", kindText},
	"name":             {"name", kindText},
	"locationId":       {"location_id", kindText},
	"price":            {"price", kindText},
	"discountPrice":    {"discount_price", kindText},
	"discountFrom":     {"discount_from", kindTime},
	"discountTo":       {"discount_to", kindTime},
	"status":           {"status", kindInt},
	"description":      {"description", kindText},
	"uniqueIdentifier": {"unique_identifier", kindText},
	"createdAt":        {"created_at", kindTime},
	"updatedAt":        {"updated_at", kindTime},
	"deletedAt":        {"deleted_at", kindTime},
}

var comparisons = map[Op]string{
	OpEq:  "=",
	OpNeq: "<>",
	OpGt:  ">",
	OpLt:  "<",
	OpGte: ">=",
	OpLte: "<=",
}

// ToSQL renders the conjunction as a WHERE fragment (without the WHERE
// keyword) with positional arguments. An error means a predicate cannot be
// expressed against the schema (e.g. a non-numeric status value) and the
// caller should treat the criteria as matching nothing.
func (c *Criteria) ToSQL() (string, []any, error) {
	if len(c.predicates) == 0 {
		return "", nil, nil
	}

	var sb strings.Builder
	var args []any

	for i, p := range c.predicates {
		col, ok := columns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", p.Field)
		}
		if i > 0 {
			sb.WriteString(" AND ")
		}

		switch p.Op {
		case OpIsNull:
			fmt.Fprintf(&sb, "%s IS NULL", col.name)

		case OpEq, OpNeq, OpGt, OpLt, OpGte, OpLte:
			value, err := convertValue(p.Value, col.kind)
			if err != nil {
				return "", nil, fmt.Errorf("field %q: %w", p.Field, err)
			}
			args = append(args, value)
			fmt.Fprintf(&sb, "%s %s $%d", col.name, comparisons[p.Op], len(args))

		case OpIn, OpNotIn:
			values, err := convertValues(p.Values, col.kind)
			if err != nil {
				return "", nil, fmt.Errorf("field %q: %w", p.Field, err)
			}
			args = append(args, values)
			if p.Op == OpIn {
				fmt.Fprintf(&sb, "%s = ANY($%d)", col.name, len(args))
			} else {
				fmt.Fprintf(&sb, "NOT (%s = ANY($%d))", col.name, len(args))
			}

		case OpContains, OpStartsWith, OpEndsWith:
			if col.kind != kindText {
				return "", nil, fmt.Errorf("field %q: pattern match on non-text field", p.Field)
			}
			args = append(args, likePattern(p.Op, p.Value))
			fmt.Fprintf(&sb, "%s LIKE $%d", col.name, len(args))

		default:
			return "", nil, fmt.Errorf("unknown operator %q", p.Op)
		}
	}

	return sb.String(), args, nil
}

func convertValue(value string, kind fieldKind) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("non-integer value %q", value)
		}
		return n, nil
	case kindTime:
		t, err := time.Parse(model.TimeLayout, value)
		if err != nil {
			return nil, fmt.Errorf("non-timestamp value %q", value)
		}
		return t, nil
	default:
		return value, nil
	}
}

func convertValues(values []string, kind fieldKind) (any, error) {
	if kind == kindText {
		return values, nil
	}
	out := make([]any, 0, len(values))
	for _, v := range values {
		converted, err := convertValue(v, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func likePattern(op Op, value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	switch op {
	case OpStartsWith:
		return escaped + "%"
	case OpEndsWith:
		return "%" + escaped
	default:
		return "%" + escaped + "%"
	}
}
