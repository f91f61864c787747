package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID       int
	Name     string
	Value    float64
	Taken    time.Time
	Active   bool
	Comments *string
}

func recordFields() *FieldSet[record] {
	return NewFieldSet[record]().
		Add("id", "r.id", Number, func(r record) interface{} { return r.ID }).
		Add("name", "r.name", String, func(r record) interface{} { return r.Name }).
		Add("value", "r.value", Number, func(r record) interface{} { return r.Value }).
		Add("taken", "r.taken", Date, func(r record) interface{} { return r.Taken }).
		Add("active", "r.active", Bool, func(r record) interface{} { return r.Active }).
		Add("comments", "r.comments", String, func(r record) interface{} {
			if r.Comments == nil {
				return nil
			}
			return *r.Comments
		})
}

func TestBuilder_Build(t *testing.T) {
	fields := recordFields()
	b := NewBuilder(20, 100)

	t.Run("defaults", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 0, PageSize: 0}, fields)
		require.NoError(t, err)
		assert.Equal(t, 1, spec.Page)
		assert.Equal(t, 1, spec.PageSize)
		assert.True(t, spec.Filter.IsEmpty())
		assert.Nil(t, spec.Sort)
	})

	t.Run("clamps page size", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 3, PageSize: 1000}, fields)
		require.NoError(t, err)
		assert.Equal(t, 100, spec.PageSize)
		assert.Equal(t, 200, spec.Offset())
		assert.Equal(t, 100, spec.Limit())
	})

	t.Run("equals clause is typed", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 1, PageSize: 20, Filter: "Id=5"}, fields)
		require.NoError(t, err)
		require.Len(t, spec.Filter.Clauses, 1)
		c := spec.Filter.Clauses[0]
		assert.Equal(t, "id", c.Field.Name)
		assert.Equal(t, OpEquals, c.Operator)
		assert.Equal(t, 5.0, c.Value)
		assert.Equal(t, "5", c.Raw)
	})

	t.Run("date and bool values", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 1, PageSize: 20, Filter: "taken>=2021-03-01;active=true"}, fields)
		require.NoError(t, err)
		require.Len(t, spec.Filter.Clauses, 2)
		assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), spec.Filter.Clauses[0].Value)
		assert.Equal(t, true, spec.Filter.Clauses[1].Value)
	})

	t.Run("date offset with decoded plus", func(t *testing.T) {
		want := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
		for _, raw := range []string{"2021-03-01T10:00:00+01:00", "2021-03-01T10:00:00 01:00"} {
			spec, err := b.Build(Params{Page: 1, PageSize: 20, Filter: "taken>=" + raw}, fields)
			require.NoError(t, err, raw)
			assert.Equal(t, want, spec.Filter.Clauses[0].Value, raw)
		}
	})

	t.Run("simple filter on string is contains", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 1, PageSize: 20, FilterField: "name", FilterValue: "jua"}, fields)
		require.NoError(t, err)
		require.Len(t, spec.Filter.Clauses, 1)
		assert.Equal(t, OpContains, spec.Filter.Clauses[0].Operator)
	})

	t.Run("simple filter on number is equals and AND-ed", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 1, PageSize: 20, FilterField: "value", FilterValue: "70", Filter: "name:ana"}, fields)
		require.NoError(t, err)
		assert.Equal(t, And, spec.Filter.Combinator)
		require.Len(t, spec.Filter.Clauses, 2)
		assert.Equal(t, "value", spec.Filter.Clauses[0].Field.Name)
		assert.Equal(t, OpEquals, spec.Filter.Clauses[0].Operator)
	})

	t.Run("sort", func(t *testing.T) {
		spec, err := b.Build(Params{Page: 1, PageSize: 20, SortField: "VALUE", SortDesc: true}, fields)
		require.NoError(t, err)
		require.NotNil(t, spec.Sort)
		assert.Equal(t, "value", spec.Sort.Field.Name)
		assert.Equal(t, "r.value", spec.Sort.Field.Column)
		assert.True(t, spec.Sort.Descending)
	})
}

func TestBuilder_BuildErrors(t *testing.T) {
	fields := recordFields()
	b := NewBuilder(20, 100)

	tests := []struct {
		name      string
		params    Params
		wantParam string
		wantMsg   string
	}{
		{name: "unknown filter field", params: Params{Filter: "password:x"}, wantParam: FilterParam, wantMsg: `unknown filter field "password"`},
		{name: "coercion failure", params: Params{Filter: "value>abc"}, wantParam: FilterParam, wantMsg: `invalid value "abc" for number field "value"`},
		{name: "NaN", params: Params{Filter: "value=NaN"}, wantParam: FilterParam, wantMsg: `invalid value "NaN" for number field "value"`},
		{name: "infinity", params: Params{Filter: "value>Inf"}, wantParam: FilterParam, wantMsg: `invalid value "Inf" for number field "value"`},
		{name: "negative infinity", params: Params{Filter: "value>=-Infinity"}, wantParam: FilterParam, wantMsg: "invalid value"},
		{name: "simple filter NaN", params: Params{FilterField: "value", FilterValue: "nan"}, wantParam: FilterFieldParam, wantMsg: "invalid value"},
		{name: "filterField without filterValue", params: Params{FilterField: "name"}, wantParam: FilterValueParam, wantMsg: "filterValue is required with filterField"},
		{name: "filterValue without filterField", params: Params{FilterValue: "jua"}, wantParam: FilterFieldParam, wantMsg: "filterField is required with filterValue"},
		{name: "bad date", params: Params{Filter: "taken<yesterday"}, wantParam: FilterParam, wantMsg: "date field"},
		{name: "contains on number", params: Params{Filter: "value:5"}, wantParam: FilterParam, wantMsg: "not supported"},
		{name: "range on string", params: Params{Filter: "name>b"}, wantParam: FilterParam, wantMsg: "not supported"},
		{name: "range on bool", params: Params{Filter: "active>false"}, wantParam: FilterParam, wantMsg: "not supported"},
		{name: "unknown simple filter field", params: Params{FilterField: "secret", FilterValue: "x"}, wantParam: FilterFieldParam, wantMsg: "unknown filter field"},
		{name: "simple filter coercion", params: Params{FilterField: "id", FilterValue: "x"}, wantParam: FilterFieldParam, wantMsg: "invalid value"},
		{name: "simple filter with OR", params: Params{FilterField: "name", FilterValue: "a", Filter: "id=1|id=2"}, wantParam: FilterFieldParam, wantMsg: "OR filter"},
		{name: "unknown sort field", params: Params{SortField: "salary"}, wantParam: SortFieldParam, wantMsg: `unknown sort field "salary"`},
		{name: "malformed", params: Params{Filter: "name"}, wantParam: FilterParam, wantMsg: "missing operator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.params, fields)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuery))

			var qe *Error
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, tt.wantParam, qe.Param)
			assert.Contains(t, qe.Msg, tt.wantMsg)
		})
	}
}

func TestFieldSet_Lookup(t *testing.T) {
	fields := recordFields()

	f, ok := fields.Lookup(" Name ")
	require.True(t, ok)
	assert.Equal(t, Field{Name: "name", Column: "r.name", Type: String}, f)

	_, ok = fields.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"id", "name", "value", "taken", "active", "comments"}, fields.Names())
	assert.Panics(t, func() { fields.MustLookup("missing") })
}
