package handlers

import (
	"sagemaker-deployer/internal/core/services"

	"github.com/gin-gonic/gin"
)

// DeployDefaults fill in the instance sizing and role of a deployment request
// that leaves them out.
type DeployDefaults struct {
	RoleARN       string
	InstanceType  string
	InstanceCount int
}

type Handler struct {
	cutoverSvc      *services.CutoverService
	deploymentSvc   *services.DeploymentService
	registrationSvc *services.RegistrationService
	defaults        DeployDefaults
}

func New(
	cutoverSvc *services.CutoverService,
	deploymentSvc *services.DeploymentService,
	registrationSvc *services.RegistrationService,
	defaults DeployDefaults,
) *Handler {
	return &Handler{
		cutoverSvc:      cutoverSvc,
		deploymentSvc:   deploymentSvc,
		registrationSvc: registrationSvc,
		defaults:        defaults,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Deployments
	r.POST("/deployments", h.CreateDeployment)
	r.GET("/deployments", h.ListDeployments)
	r.GET("/deployments/:id", h.GetDeployment)

	// Endpoints
	r.GET("/endpoints/:name", h.GetEndpointStatus)

	// Model Packages
	r.POST("/model_packages", h.RegisterModelPackage)
	r.GET("/model_packages/latest", h.GetLatestModelPackage)
}
