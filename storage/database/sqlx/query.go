package sqlxrepos

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// defaultOrdering is used when a spec has no sort, and as the tiebreaker otherwise.
var defaultOrdering = core.DBOrdering{Field: "id", Ascending: true}

// selectQuery renders a query.Spec as SQL. Values are always bound; only allow-listed
// columns are written into the statement.
type selectQuery struct {
	args []interface{}
}

func (q *selectQuery) bind(v interface{}) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *selectQuery) typedBind(c query.Clause) string {
	switch c.Field.Type {
	case query.Number:
		return q.bind(c.Value) + "::numeric"
	case query.Date:
		return q.bind(c.Value) + "::timestamptz"
	case query.Bool:
		return q.bind(c.Value) + "::boolean"
	default:
		return q.bind(c.Value)
	}
}

func (q *selectQuery) clause(c query.Clause) string {
	col := c.Field.Column
	switch c.Operator {
	case query.OpContains:
		s, _ := c.Value.(string)
		return col + ` ILIKE ` + q.bind("%"+likeEscaper.Replace(s)+"%") + ` ESCAPE '\'`
	case query.OpEquals:
		return col + " = " + q.typedBind(c)
	case query.OpNotEquals:
		return col + " <> " + q.typedBind(c)
	case query.OpGreaterThan:
		return col + " > " + q.typedBind(c)
	case query.OpLessThan:
		return col + " < " + q.typedBind(c)
	case query.OpGreaterOrEqual:
		return col + " >= " + q.typedBind(c)
	case query.OpLessOrEqual:
		return col + " <= " + q.typedBind(c)
	default:
		return "FALSE"
	}
}

// where renders `WHERE (scope…) AND (filter)`, empty when spec has neither.
func (q *selectQuery) where(spec query.Spec) string {
	conds := make([]string, 0, len(spec.Scope)+1)
	for _, c := range spec.Scope {
		conds = append(conds, q.clause(c))
	}

	if !spec.Filter.IsEmpty() {
		sep := " AND "
		if spec.Filter.Combinator == query.Or {
			sep = " OR "
		}
		parts := make([]string, 0, len(spec.Filter.Clauses))
		for _, c := range spec.Filter.Clauses {
			parts = append(parts, q.clause(c))
		}
		conds = append(conds, "("+strings.Join(parts, sep)+")")
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func orderBy(spec query.Spec) string {
	if spec.Sort == nil {
		return " " + core.OrderBy(defaultOrdering)
	}
	ord := core.DBOrdering{Field: spec.Sort.Field.Column, Ascending: !spec.Sort.Descending}
	return " " + core.OrderBy(ord, defaultOrdering)
}

func (q *selectQuery) page(spec query.Spec) string {
	if spec.Limit() <= 0 {
		return ""
	}
	return " LIMIT " + q.bind(spec.Limit()) + " OFFSET " + q.bind(spec.Offset())
}

// buildSelect returns the paged select statement and the count statement of spec, with
// their arguments.
func buildSelect(columns, table string, spec query.Spec) (string, []interface{}, string, []interface{}) {
	var q selectQuery
	where := q.where(spec)
	countSQL := "SELECT COUNT(*) FROM " + table + where
	countArgs := append([]interface{}(nil), q.args...)

	selectSQL := "SELECT " + columns + " FROM " + table + where + orderBy(spec) + q.page(spec)
	return selectSQL, q.args, countSQL, countArgs
}

// querySpec loads the page of rows matching spec into dest (a pointer to a slice) and
// returns the number of matching rows.
func querySpec(ctx context.Context, exec core.DBExecutor, dest interface{}, columns, table string, spec query.Spec) (int, error) {
	selectSQL, args, countSQL, countArgs := buildSelect(columns, table, spec)

	var total int
	if err := exec.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return 0, errors.Wrapf(err, "counting %s", table)
	}
	if err := exec.SelectContext(ctx, dest, selectSQL, args...); err != nil {
		return 0, errors.Wrapf(err, "querying %s", table)
	}
	return total, nil
}
