package query

import (
	"cmp"
	"fmt"
	"reflect"
	"time"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

type Comparator func(order int) bool

var operators = make(map[domain.Operator]Comparator)

// suffixes maps the bracket token of a filter key to its operator.
var suffixes = map[string]domain.Operator{
	"eq":  domain.OpEq,
	"gt":  domain.OpGt,
	"gte": domain.OpGte,
	"lt":  domain.OpLt,
	"lte": domain.OpLte,
}

func init() {
	operators[domain.OpEq] = func(order int) bool { return order == 0 }
	operators[domain.OpGt] = func(order int) bool { return order > 0 }
	operators[domain.OpGte] = func(order int) bool { return order >= 0 }
	operators[domain.OpLt] = func(order int) bool { return order < 0 }
	operators[domain.OpLte] = func(order int) bool { return order <= 0 }
}

// Compare orders two coerced values of the same kind.
func Compare(a, b any) (int, error) {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, mismatch(a, b)
		}
		return cmp.Compare(x, y), nil
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, mismatch(a, b)
		}
		return cmp.Compare(x, y), nil
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, mismatch(a, b)
		}
		return x.Compare(y), nil
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, mismatch(a, b)
		}
		switch {
		case x == y:
			return 0, nil
		case !x:
			return -1, nil
		default:
			return 1, nil
		}
	}
	return 0, mismatch(a, b)
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}

func mismatch(a, b any) error {
	return fmt.Errorf("cannot compare %s with %s", reflect.TypeOf(a), reflect.TypeOf(b))
}
