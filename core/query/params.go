package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize    = 20
	DefaultMaxPageSize = 100
)

// query-string keys
const (
	PageParam           = "page"
	PageSizeParam       = "pageSize"
	FilterFieldParam    = "filterField"
	FilterValueParam    = "filterValue"
	FilterParam         = "filter"
	SortFieldParam      = "sortField"
	SortDescParam       = "sortDesc"
	sortDescendingParam = "sortDescending"
)

// Params holds the raw list parameters of a request.
type Params struct {
	Page        int
	PageSize    int
	FilterField string
	FilterValue string
	Filter      string // advanced expression, eg. "value>50;subject:math"; encode "+" in date offsets as %2B
	SortField   string
	SortDesc    bool
}

// ParamsFromValues reads Params from a query string using the package defaults.
func ParamsFromValues(v url.Values) Params {
	return Builder{}.Params(v)
}

// Normalize clamps page to >= 1 and pageSize to [1, maxPageSize].
// A maxPageSize < 1 falls back to DefaultMaxPageSize.
func Normalize(page, pageSize, maxPageSize int) (int, int) {
	if maxPageSize < 1 {
		maxPageSize = DefaultMaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	// keep (page-1)*pageSize representable
	if maxPage := math.MaxInt32 / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
