package query

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Match reports whether item satisfies both the scope and the filter of spec.
// NULL (nil) values never match, as in SQL.
func (fs *FieldSet[T]) Match(item T, spec Spec) bool {
	for _, c := range spec.Scope {
		if !fs.eval(item, c) {
			return false
		}
	}
	if spec.Filter.IsEmpty() {
		return true
	}
	if spec.Filter.Combinator == Or {
		for _, c := range spec.Filter.Clauses {
			if fs.eval(item, c) {
				return true
			}
		}
		return false
	}
	for _, c := range spec.Filter.Clauses {
		if !fs.eval(item, c) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and paginates items (expected in default order) and returns the
// requested page with the total count of matching items.
func (fs *FieldSet[T]) Apply(items []T, spec Spec) ([]T, int) {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if fs.Match(item, spec) {
			matched = append(matched, item)
		}
	}

	if spec.Sort != nil {
		name := spec.Sort.Field.Name
		desc := spec.Sort.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(fs.Value(matched[i], name), fs.Value(matched[j], name))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(matched)
	start := spec.Offset()
	if start >= total || start < 0 {
		return []T{}, total
	}
	end := start + spec.Limit()
	if end > total || spec.Limit() <= 0 {
		end = total
	}
	return matched[start:end], total
}

func (fs *FieldSet[T]) eval(item T, c Clause) bool {
	v := fs.Value(item, c.Field.Name)
	if v == nil {
		return false
	}

	if c.Operator == OpContains {
		s, ok := v.(string)
		want, _ := c.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(want))
	}

	cmp := compareValues(v, c.Value)
	switch c.Operator {
	case OpEquals:
		return cmp == 0
	case OpNotEquals:
		return cmp != 0
	case OpGreaterThan:
		return cmp > 0
	case OpLessThan:
		return cmp < 0
	case OpGreaterOrEqual:
		return cmp >= 0
	case OpLessOrEqual:
		return cmp <= 0
	default:
		return false
	}
}

// compareValues orders two field values of the same kind. nil sorts after everything,
// like NULLs in an ascending Postgres sort.
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
