package filter

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// fields that anyone may filter on. Matching is case-sensitive.
var fields = []string{
	"id",
	"name",
	"locationId",
	"price",
	"discountPrice",
	"discountFrom",
	"discountTo",
	"status",
	"description",
	"uniqueIdentifier",
}

// timestamp fields are reserved for super-admins.
var timestamps = []string{
	"createdAt",
	"updatedAt",
	"deletedAt",
}

// param is one decoded query parameter in encounter order. Op is empty for
// the bare field=value form.
type param struct {
	field string
	op    string
	value string
}

// Compile translates the raw query string into criteria the repository can
// apply verbatim. Predicates are conjoined in encounter order. Returns nil
// (the "no query" signal, distinct from empty criteria) when visibility
// injection cannot proceed; the caller must then short-circuit to an empty
// result without touching the store.
func Compile(rawQuery string, sub auth.Subject) *Criteria {
	params := parseParams(rawQuery)
	c := &Criteria{}

	isSuper := sub.IsSuperAdmin()

	compileFilters(c, params, fields)
	if isSuper {
		compileFilters(c, params, timestamps)
	} else {
		// Location-scoped staff that explicitly filtered on status get a
		// location fence instead of the enabled-only fence. Everyone else is
		// pinned to enabled products.
		if sub.IsLocationScoped() && hasStatusParam(params) {
			if len(sub.Locations) == 0 {
				return nil
			}
			c.And(Predicate{Field: "locationId", Op: OpIn, Values: sub.Locations})
		} else {
			c.And(Predicate{Field: "status", Op: OpEq, Value: strconv.Itoa(model.StatusEnabled)})
		}
	}

	c.Limit = pageSize(params)
	c.Offset = pageOffset(params)

	return c
}

// parseParams walks the raw query left to right so predicate order matches
// parameter order, which url.Values would lose.
func parseParams(rawQuery string) []param {
	var params []param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}

		field := key
		op := ""
		if open := strings.IndexByte(key, '['); open >= 0 && strings.HasSuffix(key, "]") {
			field = key[:open]
			op = strings.ToLower(key[open+1 : len(key)-1])
		}
		params = append(params, param{field: field, op: op, value: value})
	}
	return params
}

func compileFilters(c *Criteria, params []param, whitelist []string) {
	for _, p := range params {
		if p.value == "" || !slices.Contains(whitelist, p.field) {
			continue
		}
		if p.op == "" {
			if strings.EqualFold(p.value, "null") {
				c.And(Predicate{Field: p.field, Op: OpIsNull})
			} else {
				c.And(Predicate{Field: p.field, Op: OpEq, Value: p.value})
			}
			continue
		}
		compileOp(c, p)
	}
}

func compileOp(c *Criteria, p param) {
	switch Op(p.op) {
	case OpEq, OpGt, OpLt, OpGte, OpLte, OpNeq, OpContains, OpStartsWith, OpEndsWith:
		c.And(Predicate{Field: p.field, Op: Op(p.op), Value: p.value})
	case OpIn, OpNotIn:
		items := strings.Split(p.value, ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		c.And(Predicate{Field: p.field, Op: Op(p.op), Values: items})
	default:
		// unrecognized operators are dropped without error
	}
}

// hasStatusParam mirrors the case-insensitive key-presence check of the
// original visibility rule: any status parameter counts, bare or bracketed,
// whitelisted or not.
func hasStatusParam(params []param) bool {
	for _, p := range params {
		if strings.EqualFold(p.field, "status") {
			return true
		}
	}
	return false
}

func pageSize(params []param) int {
	// last occurrence wins, matching standard query-map semantics
	raw := lastValue(params, "size")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxPageSize {
		return DefaultPageSize
	}
	return n
}

func pageOffset(params []param) int {
	raw := lastValue(params, "offset")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func lastValue(params []param, field string) string {
	value := ""
	for _, p := range params {
		if p.field == field && p.op == "" {
			value = p.value
		}
	}
	return value
}
