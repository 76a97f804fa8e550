package tool

import (
	"testing"

	"github.com/Abraxas-365/craftable/storex"
	"github.com/stretchr/testify/assert"
)

func TestListToolsRequest_GetOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{"first page starts at zero", 1, 20, 0},
		{"second page skips one page", 2, 20, 20},
		{"third page with custom size", 3, 15, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ListToolsRequest{}
			req.Page = tt.page
			req.PageSize = tt.pageSize
			assert.Equal(t, tt.want, req.GetOffset())
		})
	}
}

func TestListExecutionsRequest_GetOffset(t *testing.T) {
	req := ListExecutionsRequest{}
	req.Page = 4
	req.PageSize = 25
	assert.Equal(t, 75, req.GetOffset())

	req.Page = 1
	assert.Equal(t, 0, req.GetOffset())
}

func TestToolListResponse_PaginationMetadata(t *testing.T) {
	tools := []Tool{{Name: "sleep-analyzer"}, {Name: "feeding-tracker"}}

	resp := storex.NewPaginated(tools, 2, 2, 7)

	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Page.Number)
	assert.Equal(t, 2, resp.Page.Size)
	assert.Equal(t, 7, resp.Page.Total)
	assert.Equal(t, 4, resp.Page.Pages)
	assert.False(t, resp.Empty)
}
