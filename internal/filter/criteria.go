package filter

// Op identifies a comparison operator of a predicate.
type Op string

const (
	OpEq         Op = "eq"
	OpNeq        Op = "neq"
	OpGt         Op = "gt"
	OpLt         Op = "lt"
	OpGte        Op = "gte"
	OpLte        Op = "lte"
	OpIn         Op = "in"
	OpNotIn      Op = "notin"
	OpContains   Op = "contains"
	OpStartsWith Op = "startswith"
	OpEndsWith   Op = "endswith"
	OpIsNull     Op = "isnull"
)

// Predicate is a single comparison against a whitelisted entity field.
// Values is populated for OpIn and OpNotIn, Value for everything else.
type Predicate struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

// Criteria is an ordered conjunction of predicates plus pagination bounds.
// The repository applies it verbatim.
type Criteria struct {
	predicates []Predicate
	Limit      int
	Offset     int
}

// And appends a predicate to the conjunction, preserving encounter order.
func (c *Criteria) And(p Predicate) {
	c.predicates = append(c.predicates, p)
}

// Predicates returns the conjunction in encounter order.
func (c *Criteria) Predicates() []Predicate {
	return c.predicates
}
