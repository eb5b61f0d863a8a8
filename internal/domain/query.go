package domain

// Operator is a comparison token of a structured filter term.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Filter is one parsed (field, operator, value) term. Value is already
// coerced to the field's type: float64, bool, string or time.Time.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

type SortField struct {
	Field string
	Desc  bool
}

// QuerySpec is the validated, bounded description of a listing query.
type QuerySpec struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int
	Limit   int
}

// Skip is the zero-based offset of the first item on Page.
func (q QuerySpec) Skip() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// WithFilter returns a copy of q with f appended; the receiver is not modified.
func (q QuerySpec) WithFilter(f Filter) QuerySpec {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, f)
	return q
}
