package query

import (
	"net/url"
	"strings"
)

// Clause is a resolved filter condition: an allow-listed field, an operator and a value
// typed after the field (string, float64, time.Time or bool).
type Clause struct {
	Field    Field
	Operator Operator
	Value    interface{}
	Raw      string
}

// Eq returns an equality clause, for scoping queries from code.
func Eq(f Field, v interface{}) Clause {
	return Clause{Field: f, Operator: OpEquals, Value: v}
}

// Filter is a flat list of clauses joined by a single combinator.
type Filter struct {
	Combinator Combinator
	Clauses    []Clause
}

func (f Filter) IsEmpty() bool { return len(f.Clauses) == 0 }

// Sort orders a result set by a single field.
type Sort struct {
	Field      Field
	Descending bool
}

// Spec is the normalized description of a list query handed to the data layer.
type Spec struct {
	Page     int
	PageSize int
	Filter   Filter
	Sort     *Sort // nil: store default order

	// Scope holds clauses that are always AND-ed with Filter, whatever its combinator.
	Scope []Clause
}

func (s Spec) Offset() int { return (s.Page - 1) * s.PageSize }

func (s Spec) Limit() int { return s.PageSize }

// Restrict adds a mandatory clause to the spec.
func (s *Spec) Restrict(c Clause) {
	s.Scope = append(s.Scope, c)
}

// Builder turns raw Params into a Spec.
type Builder struct {
	DefaultPageSize int
	MaxPageSize     int
}

func NewBuilder(defaultPageSize, maxPageSize int) Builder {
	return Builder{DefaultPageSize: defaultPageSize, MaxPageSize: maxPageSize}
}

func (b Builder) defaultPageSize() int {
	if b.DefaultPageSize < 1 {
		return DefaultPageSize
	}
	return b.DefaultPageSize
}

// Params reads Params from a query string. It never fails: a missing or non-numeric
// page/pageSize falls back to 1/DefaultPageSize, and Build clamps the rest.
func (b Builder) Params(v url.Values) Params {
	desc := v.Get(SortDescParam)
	if desc == "" {
		desc = v.Get(sortDescendingParam)
	}
	sortDesc, _ := parseBool(desc)

	return Params{
		Page:        atoiOr(v.Get(PageParam), 1),
		PageSize:    atoiOr(v.Get(PageSizeParam), b.defaultPageSize()),
		FilterField: strings.TrimSpace(v.Get(FilterFieldParam)),
		FilterValue: strings.TrimSpace(v.Get(FilterValueParam)),
		Filter:      strings.TrimSpace(v.Get(FilterParam)),
		SortField:   strings.TrimSpace(v.Get(SortFieldParam)),
		SortDesc:    sortDesc,
	}
}

// Build normalizes pagination, parses and resolves the filters against fields and
// resolves the sort field. Unknown fields, malformed clauses, values that cannot be
// coerced to their field type and a filterField sent without its filterValue (or the
// reverse) are reported as *Error.
func (b Builder) Build(p Params, fields Resolver) (Spec, error) {
	page, size := Normalize(p.Page, p.PageSize, b.MaxPageSize)
	spec := Spec{Page: page, PageSize: size}

	expr, err := ParseFilter(p.Filter)
	if err != nil {
		return Spec{}, err
	}
	filter, err := Resolve(expr, fields)
	if err != nil {
		return Spec{}, err
	}

	switch {
	case p.FilterField != "" && p.FilterValue == "":
		return Spec{}, newError(FilterValueParam, "%s is required with %s", FilterValueParam, FilterFieldParam)
	case p.FilterField == "" && p.FilterValue != "":
		return Spec{}, newError(FilterFieldParam, "%s is required with %s", FilterFieldParam, FilterValueParam)
	case p.FilterField != "":
		if filter.Combinator == Or && len(filter.Clauses) > 1 {
			return Spec{}, newError(FilterFieldParam, "%s cannot be combined with an OR filter", FilterFieldParam)
		}
		c, err := simpleClause(p.FilterField, p.FilterValue, fields)
		if err != nil {
			return Spec{}, err
		}
		filter.Combinator = And
		filter.Clauses = append([]Clause{c}, filter.Clauses...)
	}
	spec.Filter = filter

	if name := strings.TrimSpace(p.SortField); name != "" {
		f, ok := fields.Lookup(name)
		if !ok {
			return Spec{}, newError(SortFieldParam, "unknown sort field %q", name)
		}
		spec.Sort = &Sort{Field: f, Descending: p.SortDesc}
	}
	return spec, nil
}

// Resolve looks every term of expr up in fields and types its value.
func Resolve(expr Expression, fields Resolver) (Filter, error) {
	filter := Filter{Combinator: expr.Combinator}
	if expr.IsEmpty() {
		return filter, nil
	}

	filter.Clauses = make([]Clause, 0, len(expr.Terms))
	for _, t := range expr.Terms {
		c, err := resolveTerm(t, fields, FilterParam)
		if err != nil {
			return Filter{}, err
		}
		filter.Clauses = append(filter.Clauses, c)
	}
	return filter, nil
}

func resolveTerm(t Term, fields Resolver, param string) (Clause, error) {
	f, ok := fields.Lookup(t.Field)
	if !ok {
		return Clause{}, newError(param, "unknown filter field %q", t.Field)
	}
	if !supports(f.Type, t.Operator) {
		return Clause{}, newError(param, "operator %q is not supported on %s field %q", t.Operator.String(), f.Type, f.Name)
	}
	val, err := coerce(f, t.Value)
	if err != nil {
		if qe, ok := err.(*Error); ok {
			qe.Param = param
		}
		return Clause{}, err
	}
	return Clause{Field: f, Operator: t.Operator, Value: val, Raw: t.Value}, nil
}

// simpleClause builds the implicit clause of the filterField/filterValue pair:
// contains on string fields, equality otherwise.
func simpleClause(name, value string, fields Resolver) (Clause, error) {
	t := Term{Field: name, Operator: OpEquals, Value: value}
	if f, ok := fields.Lookup(name); ok && f.Type == String {
		t.Operator = OpContains
	}
	return resolveTerm(t, fields, FilterFieldParam)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "desc":
		return true, true
	case "0", "f", "false", "no", "asc":
		return false, true
	default:
		return false, false
	}
}
