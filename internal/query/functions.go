package query

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "-createdAt"

	maxStringValue = 200
)

var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Builder turns untrusted query parameters into a bounded QuerySpec.
type Builder struct {
	defaultLimit int
	maxLimit     int
}

func NewBuilder(defaultLimit, maxLimit int) *Builder {
	if maxLimit < 1 {
		maxLimit = MaxLimit
	}
	if defaultLimit < 1 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultLimit, maxLimit)
	}
	return &Builder{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Build validates every parameter before anything is executed. Filter keys
// are parsed structurally as field[op]; values are never interpreted as
// operators.
func (b *Builder) Build(params url.Values) (domain.QuerySpec, error) {
	spec := domain.QuerySpec{Page: 1, Limit: b.defaultLimit}

	page, err := single(params, "page")
	if err != nil {
		return domain.QuerySpec{}, err
	}
	if page != "" {
		n, err := strconv.ParseInt(page, 10, 32)
		if err != nil || n < 1 {
			return domain.QuerySpec{}, domain.NewValidationError("page must be a positive integer")
		}
		spec.Page = int(n)
	}

	limit, err := single(params, "limit")
	if err != nil {
		return domain.QuerySpec{}, err
	}
	if limit != "" {
		n, err := strconv.ParseInt(limit, 10, 32)
		if err != nil || n < 1 {
			return domain.QuerySpec{}, domain.NewValidationError("limit must be a positive integer")
		}
		spec.Limit = int(min(n, int64(b.maxLimit)))
	}

	sort, err := single(params, "sort")
	if err != nil {
		return domain.QuerySpec{}, err
	}
	if spec.Sort, err = ParseSort(sort); err != nil {
		return domain.QuerySpec{}, err
	}

	fields, err := single(params, "fields")
	if err != nil {
		return domain.QuerySpec{}, err
	}
	if spec.Fields, err = ParseFields(fields); err != nil {
		return domain.QuerySpec{}, err
	}

	if spec.Filters, err = ParseFilters(params); err != nil {
		return domain.QuerySpec{}, err
	}
	return spec, nil
}

func single(params url.Values, key string) (string, error) {
	values := params[key]
	switch len(values) {
	case 0:
		return "", nil
	case 1:
		return strings.TrimSpace(values[0]), nil
	default:
		return "", domain.NewValidationError("%s may only be given once", key)
	}
}

// ParseSort reads a comma separated list where a leading '-' means
// descending. The id is appended as a final tie-break so pages are stable.
func ParseSort(raw string) ([]domain.SortField, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultSort
	}
	var out []domain.SortField
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		f, ok := Lookup(name)
		if !ok || !f.Sortable {
			return nil, domain.NewValidationError("cannot sort by %q", name)
		}
		if seen[f.Name] {
			return nil, domain.NewValidationError("duplicate sort field %q", f.Name)
		}
		seen[f.Name] = true
		out = append(out, domain.SortField{Field: f.Name, Desc: desc})
	}
	if len(out) == 0 {
		return ParseSort(DefaultSort)
	}
	if !seen["id"] {
		out = append(out, domain.SortField{Field: "id"})
	}
	return out, nil
}

// ParseFields reads the projection list. The id is always included.
func ParseFields(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultFields(), nil
	}
	out := []string{"id"}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		if !selectable(name) {
			return nil, domain.NewValidationError("unknown field %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// ParseFilters reads every non-reserved key as a filter term.
func ParseFilters(params url.Values) ([]domain.Filter, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var out []domain.Filter
	seen := map[string]bool{}
	for _, key := range keys {
		name, op, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		f, ok := Lookup(name)
		if !ok || !f.Filter {
			return nil, domain.NewValidationError("cannot filter by %q", name)
		}
		if !f.allows(op) {
			return nil, domain.NewValidationError("operator %s is not supported on %q", op, f.Name)
		}
		term := f.Name + "[" + string(op) + "]"
		if seen[term] || len(params[key]) != 1 {
			return nil, domain.NewValidationError("duplicate filter %s", term)
		}
		seen[term] = true

		value, err := Coerce(f, params[key][0])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Filter{Field: f.Name, Op: op, Value: value})
	}
	return out, nil
}

func parseKey(key string) (string, domain.Operator, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.IndexByte(key, ']') >= 0 {
			return "", "", domain.NewValidationError("malformed filter key %q", key)
		}
		return key, domain.OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", domain.NewValidationError("malformed filter key %q", key)
	}
	token := key[open+1 : len(key)-1]
	if strings.ContainsAny(token, "[]") {
		return "", "", domain.NewValidationError("malformed filter key %q", key)
	}
	op, ok := suffixes[token]
	if !ok {
		return "", "", domain.NewValidationError("unknown operator %q", token)
	}
	return key[:open], op, nil
}

// Coerce converts a raw parameter value to the field's kind.
func Coerce(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, domain.NewValidationError("%s must be a number", f.Name)
		}
		return v, nil
	case KindInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("%s must be an integer", f.Name)
		}
		return float64(v), nil
	case KindDate:
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, domain.NewValidationError("%s must be a date", f.Name)
	case KindEnum:
		if !slices.Contains(f.Enum, raw) {
			return nil, domain.NewValidationError("%s must be one of %s", f.Name, strings.Join(f.Enum, ", "))
		}
		return raw, nil
	case KindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.NewValidationError("%s must be true or false", f.Name)
		}
		return v, nil
	default:
		if raw == "" || len(raw) > maxStringValue {
			return nil, domain.NewValidationError("invalid value for %s", f.Name)
		}
		return raw, nil
	}
}

// Match reports whether the listing satisfies every filter.
func Match(l domain.Listing, filters []domain.Filter) (bool, error) {
	values := structToMap(l)
	for _, f := range filters {
		actual, ok := resolveDotNotation(values, f.Field)
		if !ok {
			return false, domain.NewValidationError("cannot filter by %q", f.Field)
		}
		order, err := Compare(actual, f.Value)
		if err != nil {
			return false, err
		}
		comparator, ok := operators[f.Op]
		if !ok {
			return false, domain.NewValidationError("unknown operator %q", f.Op)
		}
		if !comparator(order) {
			return false, nil
		}
	}
	return true, nil
}

// Sort orders listings in place by the given keys.
func Sort(listings []domain.Listing, keys []domain.SortField) {
	mapped := make(map[string]map[string]any, len(listings))
	for _, l := range listings {
		mapped[l.ID] = structToMap(l)
	}
	slices.SortStableFunc(listings, func(a, b domain.Listing) int {
		for _, k := range keys {
			x, _ := resolveDotNotation(mapped[a.ID], k.Field)
			y, _ := resolveDotNotation(mapped[b.ID], k.Field)
			order, err := Compare(x, y)
			if err != nil || order == 0 {
				continue
			}
			if k.Desc {
				return -order
			}
			return order
		}
		return 0
	})
}

// Project returns the selected fields of l in emission order.
func Project(l domain.Listing, fields []string) Document {
	values := structToMap(l)
	doc := make(Document, len(fields)+1)
	for _, name := range fields {
		if v, ok := values[name]; ok {
			doc.Set(name, v)
		}
	}
	return doc
}
