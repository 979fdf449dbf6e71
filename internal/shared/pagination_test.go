package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 45, TotalPages: 3}, p)
}

func TestPageFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/admin/users?page=3&per_page=500", nil)
	p := PageFromRequest(req)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 200, p.Offset())

	p = PageFromRequest(httptest.NewRequest("GET", "/admin/users?page=x", nil))
	assert.Equal(t, PageRequest{Page: 1, PerPage: 20}, p)
	assert.Zero(t, p.Offset())
}
