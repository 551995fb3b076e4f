package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/http/response"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

type ExperimentHandler struct {
	log *logger.Logger
	svc services.ExperimentService
}

func NewExperimentHandler(log *logger.Logger, svc services.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{log: log.With("handler", "ExperimentHandler"), svc: svc}
}

// POST /experiment
func (h *ExperimentHandler) Create(c *gin.Context) {
	var exp domain.ExperimentResult
	if err := c.ShouldBindJSON(&exp); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid experiment payload: %s", err.Error()))
		return
	}
	if err := h.svc.Create(c.Request.Context(), &exp); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, exp)
}

// GET /experiment
func (h *ExperimentHandler) List(c *gin.Context) {
	experiments, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if experiments == nil {
		experiments = []*domain.ExperimentResult{}
	}
	response.RespondOK(c, gin.H{"experiments": experiments})
}

// GET /experiment/:experiment_result_id
func (h *ExperimentHandler) Get(c *gin.Context) {
	exp, err := h.svc.Get(c.Request.Context(), c.Param("experiment_result_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, exp)
}

type assemblyUpdate struct {
	AssemblyID   *string `json:"assembly_id"`
	AssemblyName *string `json:"assembly_name"`
}

// PUT /experiment/:experiment_result_id
func (h *ExperimentHandler) UpdateAssembly(c *gin.Context) {
	var body assemblyUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid assembly payload: %s", err.Error()))
		return
	}
	if body.AssemblyID == nil && body.AssemblyName == nil {
		response.RespondError(c, apierr.BadRequest("at least one of assembly_id, assembly_name is required"))
		return
	}
	id := c.Param("experiment_result_id")
	if err := h.svc.UpdateAssembly(c.Request.Context(), id, body.AssemblyID, body.AssemblyName); err != nil {
		response.RespondError(c, err)
		return
	}
	exp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, exp)
}

// DELETE /experiment/:experiment_result_id
func (h *ExperimentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("experiment_result_id")); err != nil {
		response.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /experiment/:experiment_result_id/samples
func (h *ExperimentHandler) Samples(c *gin.Context) {
	p, err := bindPagination(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	samples, total, err := h.svc.Samples(c.Request.Context(), c.Param("experiment_result_id"), p)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, samples, response.NewPagination(p.Page, p.PageSize, total))
}

// POST /experiment/:experiment_result_id/features
func (h *ExperimentHandler) Features(c *gin.Context) {
	p, err := bindPagination(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	features, total, err := h.svc.Features(c.Request.Context(), c.Param("experiment_result_id"), p)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, features, response.NewPagination(p.Page, p.PageSize, total))
}
