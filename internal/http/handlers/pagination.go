package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// bindPagination reads page/page_size query parameters, applying the defaults
// and bounds shared by every paginated endpoint.
func bindPagination(c *gin.Context) (expression.Pagination, error) {
	p := expression.Pagination{Page: 1, PageSize: defaultPageSize}
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, apierr.BadRequest("page must be an integer, got %q", raw)
		}
		p.Page = v
	}
	if raw := c.Query("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, apierr.BadRequest("page_size must be an integer, got %q", raw)
		}
		p.PageSize = v
	}
	return validatePagination(p)
}

func validatePagination(p expression.Pagination) (expression.Pagination, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = defaultPageSize
	}
	if p.Page < 1 {
		return p, apierr.BadRequest("page must be at least 1, got %d", p.Page)
	}
	if p.PageSize < 1 || p.PageSize > maxPageSize {
		return p, apierr.BadRequest("page_size must be between 1 and %d, got %d", maxPageSize, p.PageSize)
	}
	return p, nil
}
