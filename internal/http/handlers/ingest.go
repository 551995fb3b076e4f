package handlers

import (
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/http/response"
	"github.com/yungbote/transcriptomics-backend/internal/ingestion"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

type IngestHandler struct {
	log *logger.Logger
	svc services.IngestionService
}

func NewIngestHandler(log *logger.Logger, svc services.IngestionService) *IngestHandler {
	return &IngestHandler{log: log.With("handler", "IngestHandler"), svc: svc}
}

// POST /experiment/:experiment_result_id/ingest/matrix
func (h *IngestHandler) IngestMatrix(c *gin.Context) {
	data, _, err := readUpload(c, "rcm_file")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	records, err := h.svc.IngestMatrix(c.Request.Context(), services.MatrixIngestRequest{
		ExperimentResultID: c.Param("experiment_result_id"),
		Data:               data,
		CountType:          domain.CountType(c.PostForm("count_type")),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "ingestion completed", "records": records})
}

// POST /experiment/:experiment_result_id/ingest/single
func (h *IngestHandler) IngestSample(c *gin.Context) {
	data, filename, err := readUpload(c, "sample_file")
	if err != nil {
		response.RespondError(c, err)
		return
	}

	sampleID := c.PostForm("sample_id")
	if sampleID == "" {
		base := filepath.Base(filename)
		sampleID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	format := ingestion.FormatInfer
	if raw := c.PostForm("format"); raw != "" {
		format, err = ingestion.ParseFormat(raw)
		if err != nil {
			response.RespondError(c, err)
			return
		}
	}

	records, err := h.svc.IngestSample(c.Request.Context(), services.SampleIngestRequest{
		ExperimentResultID: c.Param("experiment_result_id"),
		SampleID:           sampleID,
		Data:               data,
		Format:             format,
		Mapping: ingestion.ColumnMapping{
			FeatureCol:    c.PostForm("feature_col"),
			RawCountCol:   c.PostForm("raw_count_col"),
			TPMCountCol:   c.PostForm("tpm_count_col"),
			TMMCountCol:   c.PostForm("tmm_count_col"),
			GETMMCountCol: c.PostForm("getmm_count_col"),
			FPKMCountCol:  c.PostForm("fpkm_count_col"),
		},
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "ingestion completed", "records": records})
}

// readUpload pulls one multipart file field into memory, returning its bytes
// and the client-supplied filename.
func readUpload(c *gin.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", apierr.BadRequest("missing upload file %q", field)
	}
	data, err := readMultipartFile(fh)
	if err != nil {
		return nil, "", apierr.BadRequest("reading upload %q: %s", field, err.Error())
	}
	return data, fh.Filename, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
