package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name               string
		page, size, max    int
		wantPage, wantSize int
	}{
		{name: "in range", page: 3, size: 20, max: 100, wantPage: 3, wantSize: 20},
		{name: "zero page", page: 0, size: 20, max: 100, wantPage: 1, wantSize: 20},
		{name: "negative page", page: -7, size: 20, max: 100, wantPage: 1, wantSize: 20},
		{name: "zero page size", page: 1, size: 0, max: 100, wantPage: 1, wantSize: 1},
		{name: "negative page size", page: 1, size: -5, max: 100, wantPage: 1, wantSize: 1},
		{name: "page size above max", page: 1, size: 500, max: 100, wantPage: 1, wantSize: 100},
		{name: "page size equal to max", page: 2, size: 100, max: 100, wantPage: 2, wantSize: 100},
		{name: "custom max", page: 1, size: 60, max: 50, wantPage: 1, wantSize: 50},
		{name: "invalid max falls back to default", page: 1, size: 500, max: 0, wantPage: 1, wantSize: DefaultMaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := Normalize(tt.page, tt.size, tt.max)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestNormalize_Properties(t *testing.T) {
	for page := -50; page <= 50; page += 7 {
		for size := -250; size <= 250; size += 13 {
			p, s := Normalize(page, size, DefaultMaxPageSize)
			assert.GreaterOrEqual(t, p, 1)
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, DefaultMaxPageSize)
			if page <= 0 {
				assert.Equal(t, 1, p)
			}
		}
	}
}

func TestNormalize_HugePageDoesNotOverflowOffset(t *testing.T) {
	page, size := Normalize(int(^uint(0)>>1), 100, 100)
	spec := Spec{Page: page, PageSize: size}
	assert.Greater(t, spec.Offset(), 0)
}

func TestBuilder_Params(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{name: "empty", query: "", want: Params{Page: 1, PageSize: DefaultPageSize}},
		{
			name:  "all set",
			query: "page=2&pageSize=50&filterField=subject&filterValue=math&filter=value>50&sortField=value&sortDesc=true",
			want: Params{
				Page: 2, PageSize: 50, FilterField: "subject", FilterValue: "math",
				Filter: "value>50", SortField: "value", SortDesc: true,
			},
		},
		{name: "non-numeric page", query: "page=abc&pageSize=xyz", want: Params{Page: 1, PageSize: DefaultPageSize}},
		{name: "negative values are kept for clamping", query: "page=-1&pageSize=-3", want: Params{Page: -1, PageSize: -3}},
		{name: "sortDescending alias", query: "sortField=id&sortDescending=1", want: Params{Page: 1, PageSize: DefaultPageSize, SortField: "id", SortDesc: true}},
		{name: "invalid bool", query: "sortDesc=maybe", want: Params{Page: 1, PageSize: DefaultPageSize}},
		{name: "trimmed", query: "filter=%20id%3D5%20&sortField=%20id%20", want: Params{Page: 1, PageSize: DefaultPageSize, Filter: "id=5", SortField: "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParamsFromValues(v))
		})
	}
}

func TestBuilder_ParamsCustomDefault(t *testing.T) {
	b := NewBuilder(10, 40)
	p := b.Params(url.Values{})
	assert.Equal(t, 10, p.PageSize)
}
