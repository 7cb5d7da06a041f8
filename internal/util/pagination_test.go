package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	testCases := []struct {
		name       string
		page       int
		limit      int
		total      int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"first of many", 1, 10, 35, 4, true, false},
		{"middle page", 2, 10, 35, 4, true, true},
		{"last page", 4, 10, 35, 4, false, true},
		{"exact fit", 1, 10, 20, 2, true, false},
		{"empty result", 1, 10, 0, 0, false, false},
		{"single short page", 1, 10, 3, 1, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.totalPages, p.TotalPages)
			assert.Equal(t, tc.hasNext, p.HasNextPage)
			assert.Equal(t, tc.hasPrev, p.HasPrevPage)
			assert.Equal(t, tc.total, p.Total)
		})
	}
}

func TestNewPaginationClampsInvalidInput(t *testing.T) {
	p := NewPagination(0, 0, 5)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Limit)
	assert.Equal(t, 5, p.TotalPages)
}

func pageParamsFor(query string) (int, int, int) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/test?"+query, nil)
	return PageParams(c, 20, 100)
}

func TestPageParams(t *testing.T) {
	page, limit, skip := pageParamsFor("page=3&limit=10")
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, skip)
}

func TestPageParamsDefaults(t *testing.T) {
	page, limit, skip := pageParamsFor("")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, skip)
}

func TestPageParamsBounds(t *testing.T) {
	page, limit, _ := pageParamsFor("page=-2&limit=9999")
	assert.Equal(t, 1, page, "Negative pages should clamp to 1")
	assert.Equal(t, 100, limit, "Limit should clamp to the maximum")

	_, limit, _ = pageParamsFor("limit=0")
	assert.Equal(t, 20, limit, "Zero limit should fall back to the default")

	_, limit, _ = pageParamsFor("limit=notanumber")
	assert.Equal(t, 20, limit, "Garbage limit should fall back to the default")
}

func TestParseTagList(t *testing.T) {
	assert.Equal(t, []string{}, ParseTagList(""))
	assert.Equal(t, []string{"go", "web"}, ParseTagList("go,web"))
	assert.Equal(t, []string{"go", "web"}, ParseTagList(" go , web "))
	assert.Equal(t, []string{"go"}, ParseTagList("go,,"))
}
