package hitview

// Expression is a composable facet filter.
// All Expressions are SearchOptions, but not all SearchOptions are Expressions.
type Expression interface {
	SearchOption
	expr()
}

type baseExpr struct{}

func (baseExpr) expr() {}

// AndExpr matches when every inner expression matches.
type AndExpr struct {
	baseExpr
	Exprs []Expression
}

// Apply implements SearchOption.
func (a AndExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, a)
}

// And combines expressions with AND logic.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// OrExpr matches when at least one inner expression matches.
type OrExpr struct {
	baseExpr
	Exprs []Expression
}

// Apply implements SearchOption.
func (o OrExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, o)
}

// Or combines expressions with OR logic.
func Or(exprs ...Expression) Expression {
	return OrExpr{Exprs: exprs}
}

// NotExpr negates Inner.
type NotExpr struct {
	baseExpr
	Inner Expression
}

// Apply implements SearchOption.
func (n NotExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Not negates expr.
func Not(expr Expression) Expression {
	return NotExpr{Inner: expr}
}

// EqExpr matches records whose Field equals Value. Field may be a dotted
// path into nested facets, e.g. "tag_categories.tests". A list-valued field
// matches when any element equals Value.
type EqExpr struct {
	baseExpr
	Field string
	Value any
}

// Apply implements SearchOption.
func (e EqExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Eq creates an equality filter.
func Eq(field string, value any) Expression {
	return EqExpr{Field: field, Value: value}
}

// NeExpr is the negation of EqExpr.
type NeExpr struct {
	baseExpr
	Field string
	Value any
}

// Apply implements SearchOption.
func (n NeExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Ne creates a not-equal filter.
func Ne(field string, value any) Expression {
	return NeExpr{Field: field, Value: value}
}

// ExistsExpr matches records that carry Field at all.
type ExistsExpr struct {
	baseExpr
	Field string
}

// Apply implements SearchOption.
func (e ExistsExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Exists creates a field existence filter.
func Exists(field string) Expression {
	return ExistsExpr{Field: field}
}
