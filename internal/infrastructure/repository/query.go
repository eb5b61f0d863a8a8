package repository

import (
	"gorm.io/gorm/clause"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
)

// filterExpressions translates parsed filters into parameterised clauses.
// Column names only ever come from the field registry.
func filterExpressions(filters []domain.Filter) ([]clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		field, ok := query.Lookup(f.Field)
		if !ok || !field.Filter {
			return nil, domain.NewValidationError("cannot filter by %q", f.Field)
		}
		column := clause.Column{Name: field.Column}
		value := f.Value
		if v, ok := value.(float64); ok && field.Kind == query.KindInteger {
			value = int64(v)
		}
		switch f.Op {
		case domain.OpEq:
			exprs = append(exprs, clause.Eq{Column: column, Value: value})
		case domain.OpGt:
			exprs = append(exprs, clause.Gt{Column: column, Value: value})
		case domain.OpGte:
			exprs = append(exprs, clause.Gte{Column: column, Value: value})
		case domain.OpLt:
			exprs = append(exprs, clause.Lt{Column: column, Value: value})
		case domain.OpLte:
			exprs = append(exprs, clause.Lte{Column: column, Value: value})
		default:
			return nil, domain.NewValidationError("unknown operator %q", f.Op)
		}
	}
	return exprs, nil
}

func orderBy(keys []domain.SortField) (clause.OrderBy, error) {
	columns := make([]clause.OrderByColumn, 0, len(keys))
	for _, k := range keys {
		field, ok := query.Lookup(k.Field)
		if !ok || !field.Sortable {
			return clause.OrderBy{}, domain.NewValidationError("cannot sort by %q", k.Field)
		}
		columns = append(columns, clause.OrderByColumn{
			Column: clause.Column{Name: field.Column},
			Desc:   k.Desc,
		})
	}
	return clause.OrderBy{Columns: columns}, nil
}
