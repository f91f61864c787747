package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []record {
	note := "late"
	day := func(d int) time.Time { return time.Date(2021, 3, d, 0, 0, 0, 0, time.UTC) }
	return []record{
		{ID: 1, Name: "Juan Perez", Value: 45, Taken: day(1), Active: true},
		{ID: 2, Name: "Maria Lopez", Value: 80, Taken: day(2), Active: true, Comments: &note},
		{ID: 3, Name: "juana diaz", Value: 65, Taken: day(3), Active: false},
		{ID: 4, Name: "Pedro Gomez", Value: 80, Taken: day(4), Active: true},
		{ID: 5, Name: "Ana Maria Ruiz", Value: 92, Taken: day(5), Active: false},
	}
}

func ids(items []record) []int {
	out := make([]int, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}
	return out
}

func TestFieldSet_Apply(t *testing.T) {
	fields := recordFields()
	b := NewBuilder(20, 100)

	tests := []struct {
		name      string
		params    Params
		wantIDs   []int
		wantTotal int
	}{
		{name: "no filter", params: Params{Page: 1, PageSize: 20}, wantIDs: []int{1, 2, 3, 4, 5}, wantTotal: 5},
		{name: "contains is case-insensitive", params: Params{Page: 1, PageSize: 20, Filter: "name:JUAN"}, wantIDs: []int{1, 3}, wantTotal: 2},
		{name: "and", params: Params{Page: 1, PageSize: 20, Filter: "value>50;name:maria"}, wantIDs: []int{2, 5}, wantTotal: 2},
		{name: "or", params: Params{Page: 1, PageSize: 20, Filter: "name:pedro|name:ana"}, wantIDs: []int{3, 4, 5}, wantTotal: 3},
		{name: "not equals", params: Params{Page: 1, PageSize: 20, Filter: "value!=80"}, wantIDs: []int{1, 3, 5}, wantTotal: 3},
		{name: "date range", params: Params{Page: 1, PageSize: 20, Filter: "taken>=2021-03-02;taken<2021-03-04"}, wantIDs: []int{2, 3}, wantTotal: 2},
		{name: "bool", params: Params{Page: 1, PageSize: 20, Filter: "active=false"}, wantIDs: []int{3, 5}, wantTotal: 2},
		{name: "null never matches", params: Params{Page: 1, PageSize: 20, Filter: "comments!=x"}, wantIDs: []int{2}, wantTotal: 1},
		{name: "sort desc is stable", params: Params{Page: 1, PageSize: 20, SortField: "value", SortDesc: true}, wantIDs: []int{5, 2, 4, 3, 1}, wantTotal: 5},
		{name: "sort asc puts nulls last", params: Params{Page: 1, PageSize: 20, SortField: "comments"}, wantIDs: []int{2, 1, 3, 4, 5}, wantTotal: 5},
		{name: "second page", params: Params{Page: 2, PageSize: 2}, wantIDs: []int{3, 4}, wantTotal: 5},
		{name: "last partial page", params: Params{Page: 3, PageSize: 2}, wantIDs: []int{5}, wantTotal: 5},
		{name: "page past the end", params: Params{Page: 9, PageSize: 2}, wantIDs: []int{}, wantTotal: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := b.Build(tt.params, fields)
			require.NoError(t, err)

			items, total := fields.Apply(sampleRecords(), spec)
			assert.Equal(t, tt.wantIDs, ids(items))
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestFieldSet_ApplyScope(t *testing.T) {
	fields := recordFields()

	spec, err := NewBuilder(20, 100).Build(Params{Page: 1, PageSize: 20, Filter: "id=1|id=4|id=5"}, fields)
	require.NoError(t, err)
	spec.Restrict(Eq(fields.MustLookup("active"), true))

	items, total := fields.Apply(sampleRecords(), spec)
	assert.Equal(t, []int{1, 4}, ids(items))
	assert.Equal(t, 2, total)
}

func TestFieldSet_ApplyZeroSpecReturnsAll(t *testing.T) {
	items, total := recordFields().Apply(sampleRecords(), Spec{})
	assert.Len(t, items, 5)
	assert.Equal(t, 5, total)
}
