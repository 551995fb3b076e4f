package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/http/response"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

type QueryHandler struct {
	log *logger.Logger
	svc services.QueryService
}

func NewQueryHandler(log *logger.Logger, svc services.QueryService) *QueryHandler {
	return &QueryHandler{log: log.With("handler", "QueryHandler"), svc: svc}
}

// GET /query/expressions_all
func (h *QueryHandler) ExpressionsAll(c *gin.Context) {
	p, err := bindPagination(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, total, err := h.svc.ExpressionsAll(c.Request.Context(), p)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, rows, response.NewPagination(p.Page, p.PageSize, total))
}

type expressionQuery struct {
	Genes       []string `json:"genes"`
	Experiments []string `json:"experiments"`
	SampleIDs   []string `json:"sample_ids"`
	Method      string   `json:"method"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// POST /query/expressions
func (h *QueryHandler) Expressions(c *gin.Context) {
	var body expressionQuery
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid query payload: %s", err.Error()))
		return
	}

	p, err := validatePagination(expression.Pagination{Page: body.Page, PageSize: body.PageSize})
	if err != nil {
		response.RespondError(c, err)
		return
	}

	filter := expression.QueryFilter{
		Genes:       body.Genes,
		Experiments: body.Experiments,
		SampleIDs:   body.SampleIDs,
		Pagination:  p,
	}
	if body.Method != "" {
		method := domain.CountType(body.Method)
		filter.CountType = &method
	}

	records, total, err := h.svc.Expressions(c.Request.Context(), filter)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, records, response.NewPagination(p.Page, p.PageSize, total))
}
