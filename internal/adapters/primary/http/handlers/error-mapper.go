package handlers

import (
	"errors"
	"net/http"

	"sagemaker-deployer/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrDeploymentNotFound),
		errors.Is(err, domain.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrDeploymentInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidModelName),
		errors.Is(err, domain.ErrInvalidRoleARN),
		errors.Is(err, domain.ErrInvalidInstanceType),
		errors.Is(err, domain.ErrInvalidInstanceCount),
		errors.Is(err, domain.ErrInvalidResourceName),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrInvalidModelDataURL),
		errors.Is(err, domain.ErrMissingConfig),
		errors.Is(err, domain.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Precondition errors
	case errors.Is(err, domain.ErrNoApprovedModel):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrTransient),
		errors.Is(err, domain.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
