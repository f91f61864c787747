package query

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type FieldType int

const (
	String FieldType = iota + 1
	Number
	Date
	Bool
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	case Bool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Field is an allow-listed, filterable and sortable property of an entity.
type Field struct {
	Name   string // public name, as used in query strings
	Column string // SQL expression the field maps to
	Type   FieldType
}

// Resolver looks a public field name up in an allow-list.
type Resolver interface {
	Lookup(name string) (Field, bool)
}

// FieldSet is the allow-list of fields of entity type T. Each field carries an accessor
// so that in-memory stores can filter and sort without reflection.
type FieldSet[T any] struct {
	fields    []Field
	accessors []func(T) interface{}
	index     map[string]int // lower-cased name -> position
}

var _ Resolver = (*FieldSet[struct{}])(nil)

func NewFieldSet[T any]() *FieldSet[T] {
	return &FieldSet[T]{index: make(map[string]int)}
}

// Add registers a field. get may return nil for NULL values.
func (fs *FieldSet[T]) Add(name, column string, typ FieldType, get func(T) interface{}) *FieldSet[T] {
	fs.index[strings.ToLower(name)] = len(fs.fields)
	fs.fields = append(fs.fields, Field{Name: name, Column: column, Type: typ})
	fs.accessors = append(fs.accessors, get)
	return fs
}

// Lookup finds a field by name, case-insensitively.
func (fs *FieldSet[T]) Lookup(name string) (Field, bool) {
	i, ok := fs.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field{}, false
	}
	return fs.fields[i], true
}

// MustLookup is Lookup for names known at compile time.
func (fs *FieldSet[T]) MustLookup(name string) Field {
	f, ok := fs.Lookup(name)
	if !ok {
		panic("query: unknown field " + name)
	}
	return f
}

func (fs *FieldSet[T]) Names() []string {
	names := make([]string, 0, len(fs.fields))
	for _, f := range fs.fields {
		names = append(names, f.Name)
	}
	return names
}

// Value returns the value of field name on item, nil if unknown or NULL.
func (fs *FieldSet[T]) Value(item T, name string) interface{} {
	i, ok := fs.index[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return fs.accessors[i](item)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// coerce types raw according to the field type.
func coerce(f Field, raw string) (interface{}, error) {
	switch f.Type {
	case Number:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, newError(FilterParam, "invalid value %q for %s field %q", raw, f.Type, f.Name)
		}
		return n, nil
	case Date:
		if t, ok := parseDate(raw); ok {
			return t, nil
		}
		// an unencoded "+hh:mm" offset reaches us as " hh:mm"
		if i := strings.LastIndexByte(raw, ' '); i > 0 && len(raw)-i == 6 {
			if t, ok := parseDate(raw[:i] + "+" + raw[i+1:]); ok {
				return t, nil
			}
		}
		return nil, newError(FilterParam, "invalid value %q for %s field %q", raw, f.Type, f.Name)
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, newError(FilterParam, "invalid value %q for %s field %q", raw, f.Type, f.Name)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// supports reports whether op can be applied to a field of type t.
func supports(t FieldType, op Operator) bool {
	switch op {
	case OpEquals, OpNotEquals:
		return true
	case OpContains:
		return t == String
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		return t == Number || t == Date
	default:
		return false
	}
}
