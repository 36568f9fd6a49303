package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/products-api/internal/auth"
)

var (
	anonymous = auth.Subject{}
	superSub  = auth.Subject{
		Roles:         []string{auth.RoleSuperAdmin},
		Authenticated: true,
	}
)

func employeeSub(locations ...string) auth.Subject {
	return auth.Subject{
		Roles:         []string{auth.RoleEmployee},
		Locations:     locations,
		Authenticated: true,
	}
}

func TestCompileFilters(t *testing.T) {
	t.Run("Should compile bare parameter as equality", func(t *testing.T) {
		c := Compile("name=Coffee", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, Predicate{Field: "name", Op: OpEq, Value: "Coffee"}, preds[0])
	})

	t.Run("Should compile null value as is-null test", func(t *testing.T) {
		c := Compile("discountPrice=NULL", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, Predicate{Field: "discountPrice", Op: OpIsNull}, preds[0])
	})

	t.Run("Should compile bracketed operator", func(t *testing.T) {
		c := Compile("price[gte]=10", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, Predicate{Field: "price", Op: OpGte, Value: "10"}, preds[0])
	})

	t.Run("Should split and trim list operators", func(t *testing.T) {
		c := Compile("id[in]=a,%20b%20,c", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, Predicate{Field: "id", Op: OpIn, Values: []string{"a", "b", "c"}}, preds[0])
	})

	t.Run("Should drop unrecognized operators silently", func(t *testing.T) {
		c := Compile("price[between]=1", superSub)
		require.NotNil(t, c)
		assert.Empty(t, c.Predicates())
	})

	t.Run("Should match field names case-sensitively", func(t *testing.T) {
		c := Compile("locationid=abc", superSub)
		require.NotNil(t, c)
		assert.Empty(t, c.Predicates())
	})

	t.Run("Should skip parameters with empty values", func(t *testing.T) {
		c := Compile("name=&price=10", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, "price", preds[0].Field)
	})

	t.Run("Should conjoin predicates in encounter order", func(t *testing.T) {
		c := Compile("price[gt]=5&name[contains]=cof", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 2)
		assert.Equal(t, "price", preds[0].Field)
		assert.Equal(t, "name", preds[1].Field)
	})
}

func TestCompileTimestampFields(t *testing.T) {
	t.Run("Should compile timestamp filters for super-admins after regular fields", func(t *testing.T) {
		c := Compile("createdAt[gte]=2026-01-01T00:00:00%2B0000&name=Coffee", superSub)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 2)
		assert.Equal(t, "name", preds[0].Field)
		assert.Equal(t, "createdAt", preds[1].Field)
	})

	t.Run("Should drop timestamp filters for everyone else", func(t *testing.T) {
		c := Compile("deletedAt=null", anonymous)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, Predicate{Field: "status", Op: OpEq, Value: "1"}, preds[0])
	})
}

func TestCompileVisibilityInjection(t *testing.T) {
	t.Run("Should pin anonymous callers to enabled products", func(t *testing.T) {
		c := Compile("name=Coffee", anonymous)
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 2)
		assert.Equal(t, Predicate{Field: "status", Op: OpEq, Value: "1"}, preds[1])
	})

	t.Run("Should not inject anything for super-admins", func(t *testing.T) {
		c := Compile("", superSub)
		require.NotNil(t, c)
		assert.Empty(t, c.Predicates())
	})

	t.Run("Should fence staff by location when they filter on status", func(t *testing.T) {
		c := Compile("status=0", employeeSub("loc-1", "loc-2"))
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 2)
		assert.Equal(t, Predicate{Field: "status", Op: OpEq, Value: "0"}, preds[0])
		assert.Equal(t, Predicate{Field: "locationId", Op: OpIn, Values: []string{"loc-1", "loc-2"}}, preds[1])
	})

	t.Run("Should detect the status parameter case-insensitively", func(t *testing.T) {
		c := Compile("STATUS[in]=0,1", employeeSub("loc-1"))
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 1)
		assert.Equal(t, "locationId", preds[0].Field)
	})

	t.Run("Should signal no query for location-scoped staff without locations", func(t *testing.T) {
		c := Compile("status=1", employeeSub())
		assert.Nil(t, c)
	})

	t.Run("Should pin staff without a status filter to enabled products", func(t *testing.T) {
		c := Compile("name=Coffee", employeeSub("loc-1"))
		require.NotNil(t, c)

		preds := c.Predicates()
		require.Len(t, preds, 2)
		assert.Equal(t, Predicate{Field: "status", Op: OpEq, Value: "1"}, preds[1])
	})
}

func TestCompilePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"valid size and offset", "size=50&offset=30", 50, 30},
		{"size above maximum", "size=9999", 20, 0},
		{"size below minimum", "size=0", 20, 0},
		{"non-numeric size", "size=abc", 20, 0},
		{"negative offset", "offset=-5", 20, 0},
		{"maximum size", "size=200", 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compile(tt.query, superSub)
			require.NotNil(t, c)
			assert.Equal(t, tt.wantLimit, c.Limit)
			assert.Equal(t, tt.wantOffset, c.Offset)
		})
	}
}
