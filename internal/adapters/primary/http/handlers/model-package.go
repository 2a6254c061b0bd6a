package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/adapters/primary/http/dto"
	"sagemaker-deployer/internal/core/domain"
	"sagemaker-deployer/internal/core/services"
)

func (h *Handler) RegisterModelPackage(c *gin.Context) {
	var req dto.RegisterModelPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.registrationSvc.Register(c.Request.Context(), services.RegisterRequest{
		ModelName:          req.ModelName,
		Description:        req.Description,
		PackageDescription: req.PackageDescription,
		Image:              req.Image,
		ModelDataURL:       req.ModelDataURL,
		ContentTypes:       req.ContentTypes,
		ResponseTypes:      req.ResponseTypes,
		ApprovalStatus:     domain.ApprovalStatus(req.ApprovalStatus),
	})
	if err != nil {
		log.WithError(err).WithField("model_name", req.ModelName).Error("register model package failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetLatestModelPackage returns the package a deployment of model_name would pick.
func (h *Handler) GetLatestModelPackage(c *gin.Context) {
	modelName := c.Query("model_name")
	if modelName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidModelName.Error()})
		return
	}

	pkg, err := h.cutoverSvc.ResolveLatestApproved(c.Request.Context(), modelName)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelPackageResponse(pkg))
}
