package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagedResult(t *testing.T) {
	tests := []struct {
		name                  string
		total, page, pageSize int
		wantPages             int
		wantPrev, wantNext    bool
	}{
		{name: "partial last page", total: 95, page: 1, pageSize: 20, wantPages: 5, wantNext: true},
		{name: "exact multiple, last page", total: 100, page: 5, pageSize: 20, wantPages: 5, wantPrev: true},
		{name: "exact multiple, middle page", total: 100, page: 4, pageSize: 20, wantPages: 5, wantPrev: true, wantNext: true},
		{name: "empty set", total: 0, page: 1, pageSize: 20, wantPages: 0},
		{name: "page past the end", total: 10, page: 3, pageSize: 5, wantPages: 2, wantPrev: true},
		{name: "zero page size", total: 10, page: 1, pageSize: 0, wantPages: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewPagedResult([]int{}, tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.Equal(t, tt.wantPrev, res.HasPreviousPage)
			assert.Equal(t, tt.wantNext, res.HasNextPage)
		})
	}
}

func TestNewPagedResult_RoundTrip(t *testing.T) {
	res := NewPagedResult([]string{"a", "b"}, 2, 1, 20)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"items": ["a", "b"],
		"totalCount": 2,
		"page": 1,
		"pageSize": 20,
		"totalPages": 1,
		"hasPreviousPage": false,
		"hasNextPage": false
	}`, string(data))
}

func TestNewPagedResult_NilItemsSerializeAsEmptyList(t *testing.T) {
	res := PageOf[int](nil, 0, Spec{Page: 1, PageSize: 20})

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
}
