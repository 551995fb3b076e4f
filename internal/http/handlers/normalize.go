package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/http/response"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

type NormalizeHandler struct {
	log *logger.Logger
	svc services.NormalizationService
}

func NewNormalizeHandler(log *logger.Logger, svc services.NormalizationService) *NormalizeHandler {
	return &NormalizeHandler{log: log.With("handler", "NormalizeHandler"), svc: svc}
}

// POST /normalize/:experiment_result_id/:method
func (h *NormalizeHandler) Normalize(c *gin.Context) {
	// The length table is only required for tpm/getmm; its absence is judged
	// by the service so the 400 carries the method name.
	var lengths []byte
	if fh, err := c.FormFile("gene_lengths_file"); err == nil {
		data, err := readMultipartFile(fh)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		lengths = data
	}

	records, err := h.svc.Normalize(c.Request.Context(), services.NormalizeRequest{
		ExperimentResultID: c.Param("experiment_result_id"),
		Method:             domain.CountType(c.Param("method")),
		GeneLengths:        lengths,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "normalization completed", "records": records})
}
