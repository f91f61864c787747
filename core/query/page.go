package query

// PagedResult is the response envelope of a list endpoint.
type PagedResult[T any] struct {
	Items           []T  `json:"items"`
	TotalCount      int  `json:"totalCount"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPagedResult wraps an already paginated slice. totalCount is the size of the whole
// filtered set; neither it nor len(items) is checked against pageSize.
func NewPagedResult[T any](items []T, totalCount, page, pageSize int) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	var totalPages int
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return PagedResult[T]{
		Items:           items,
		TotalCount:      totalCount,
		Page:            page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}

// PageOf builds the envelope for a page fetched with spec.
func PageOf[T any](items []T, totalCount int, spec Spec) PagedResult[T] {
	return NewPagedResult(items, totalCount, spec.Page, spec.PageSize)
}
