package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sagemaker-deployer/internal/adapters/primary/http/dto"
)

func (h *Handler) GetEndpointStatus(c *gin.Context) {
	ep, readiness, err := h.deploymentSvc.EndpointStatus(c.Request.Context(), c.Param("name"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEndpointStatusResponse(ep, readiness))
}
