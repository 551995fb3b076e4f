package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Pagination is the page block attached to every list response.
type Pagination struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int64 `json:"total_pages"`
}

func NewPagination(page, pageSize int, total int64) Pagination {
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return Pagination{Page: page, PageSize: pageSize, TotalRecords: total, TotalPages: pages}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondPage(c *gin.Context, results any, p Pagination) {
	c.JSON(http.StatusOK, gin.H{"results": results, "pagination": p})
}

// RespondError writes the envelope for err. Internal errors keep their detail
// out of the response body; everything else surfaces its message.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.Internal(err)
	}
	msg := ae.Error()
	if ae.Code == apierr.CodeInternal {
		msg = "internal server error"
	}
	c.JSON(ae.Status, ErrorEnvelope{Error: APIError{Message: msg, Code: ae.Code}})
}
