package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

func TestBuildSelect(t *testing.T) {
	firstName := student.Fields.MustLookup("first_name")
	yearLevel := student.Fields.MustLookup("year_level")
	isActive := student.Fields.MustLookup("is_active")
	lastName := student.Fields.MustLookup("last_name")

	tests := []struct {
		name       string
		spec       query.Spec
		wantSelect string
		wantArgs   []interface{}
		wantCount  string
		wantCArgs  []interface{}
	}{
		{
			name:       "no filter",
			spec:       query.Spec{Page: 1, PageSize: 20},
			wantSelect: "SELECT id FROM students ORDER BY id ASC LIMIT $1 OFFSET $2",
			wantArgs:   []interface{}{20, 0},
			wantCount:  "SELECT COUNT(*) FROM students",
			wantCArgs:  nil,
		},
		{
			name: "scope, AND filter and sort",
			spec: query.Spec{
				Page:     2,
				PageSize: 10,
				Filter: query.Filter{Combinator: query.And, Clauses: []query.Clause{
					{Field: firstName, Operator: query.OpContains, Value: "jo_n%"},
					{Field: yearLevel, Operator: query.OpGreaterOrEqual, Value: float64(3)},
				}},
				Sort:  &query.Sort{Field: lastName, Descending: true},
				Scope: []query.Clause{query.Eq(isActive, true)},
			},
			wantSelect: `SELECT id FROM students WHERE is_active = $1::boolean AND (first_name ILIKE $2 ESCAPE '\' AND year_level >= $3::numeric) ORDER BY last_name DESC, id ASC LIMIT $4 OFFSET $5`,
			wantArgs:   []interface{}{true, `%jo\_n\%%`, float64(3), 10, 10},
			wantCount:  `SELECT COUNT(*) FROM students WHERE is_active = $1::boolean AND (first_name ILIKE $2 ESCAPE '\' AND year_level >= $3::numeric)`,
			wantCArgs:  []interface{}{true, `%jo\_n\%%`, float64(3)},
		},
		{
			name: "OR filter without paging",
			spec: query.Spec{
				Filter: query.Filter{Combinator: query.Or, Clauses: []query.Clause{
					{Field: firstName, Operator: query.OpEquals, Value: "Ann"},
					{Field: yearLevel, Operator: query.OpNotEquals, Value: float64(2)},
				}},
			},
			wantSelect: "SELECT id FROM students WHERE (first_name = $1 OR year_level <> $2::numeric) ORDER BY id ASC",
			wantArgs:   []interface{}{"Ann", float64(2)},
			wantCount:  "SELECT COUNT(*) FROM students WHERE (first_name = $1 OR year_level <> $2::numeric)",
			wantCArgs:  []interface{}{"Ann", float64(2)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel, args, count, cargs := buildSelect("id", "students", tc.spec)
			assert.Equal(t, tc.wantSelect, sel)
			assert.Equal(t, tc.wantCount, count)
			assert.Equal(t, tc.wantArgs, args)
			assert.Equal(t, tc.wantCArgs, cargs)
		})
	}
}

func TestBuildSelect_UserValuesAreNeverInlined(t *testing.T) {
	injection := "x' OR '1'='1"
	spec := query.Spec{Filter: query.Filter{Clauses: []query.Clause{
		{Field: student.Fields.MustLookup("last_name"), Operator: query.OpEquals, Value: injection},
	}}}

	sel, args, _, _ := buildSelect("id", "students", spec)
	assert.NotContains(t, sel, injection)
	assert.Equal(t, []interface{}{injection}, args)
}
