package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/services/metrics"
)

// pager reads the list parameters of paged endpoints.
type pager struct {
	builder query.Builder
}

func newPager(conf core.APIConfig) pager {
	return pager{builder: query.NewBuilder(conf.DefaultPageSize, conf.MaxPageSize)}
}

// bindSpec builds the query.Spec of a list request on entity. Rejected parameters are
// returned as *core.ValidationError.
func (p pager) bindSpec(ctx echo.Context, entity string, fields query.Resolver) (query.Spec, error) {
	spec, err := p.builder.Build(p.builder.Params(ctx.QueryParams()), fields)
	if err != nil {
		var qErr *query.Error
		if errors.As(err, &qErr) {
			metrics.ListQueriesRejected.WithLabelValues(entity, qErr.Param).Inc()
		}
		return query.Spec{}, core.NewQueryError(err)
	}
	return spec, nil
}

// unpaged returns a pager returning up to limit rows on a single page.
func (p pager) unpaged(limit int) pager {
	return pager{builder: query.NewBuilder(limit, limit)}
}
