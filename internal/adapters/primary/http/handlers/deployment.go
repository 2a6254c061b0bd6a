package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/adapters/primary/http/dto"
	"sagemaker-deployer/internal/adapters/primary/http/middleware"
	output "sagemaker-deployer/internal/core/ports/output"
	"sagemaker-deployer/internal/core/services"
)

// CreateDeployment starts a cutover in the background and returns its record.
func (h *Handler) CreateDeployment(c *gin.Context) {
	var req dto.CreateDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deployReq := services.DeployRequest{
		ModelName:     req.ModelName,
		RoleARN:       req.RoleARN,
		InstanceType:  req.InstanceType,
		InstanceCount: req.InstanceCount,
	}
	if deployReq.RoleARN == "" {
		deployReq.RoleARN = h.defaults.RoleARN
	}
	if deployReq.InstanceType == "" {
		deployReq.InstanceType = h.defaults.InstanceType
	}
	if deployReq.InstanceCount == 0 {
		deployReq.InstanceCount = h.defaults.InstanceCount
	}

	d, err := h.cutoverSvc.Start(c.Request.Context(), deployReq)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"model_name": req.ModelName,
			"request_id": middleware.RequestIDFrom(c),
		}).Error("start deployment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToDeploymentResponse(d))
}

func (h *Handler) GetDeployment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deployment id"})
		return
	}

	d, err := h.deploymentSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeploymentResponse(d))
}

func (h *Handler) ListDeployments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	deployments, total, err := h.deploymentSvc.List(c.Request.Context(), output.DeploymentFilter{
		ModelName: c.Query("model_name"),
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		log.WithError(err).Error("list deployments failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.DeploymentResponse, len(deployments))
	for i, d := range deployments {
		items[i] = dto.ToDeploymentResponse(d)
	}

	c.JSON(http.StatusOK, dto.ListDeploymentsResponse{
		Items:      items,
		Total:      total,
		PageSize:   len(items),
		NextOffset: offset + len(items),
	})
}
