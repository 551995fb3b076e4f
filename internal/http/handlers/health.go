package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/config"
	"github.com/yungbote/transcriptomics-backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type ServiceInfoHandler struct {
	info config.ServiceInfo
}

func NewServiceInfoHandler(info config.ServiceInfo) *ServiceInfoHandler {
	return &ServiceInfoHandler{info: info}
}

func (h *ServiceInfoHandler) ServiceInfo(c *gin.Context) {
	response.RespondOK(c, h.info)
}
