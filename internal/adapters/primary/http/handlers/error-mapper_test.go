package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"sagemaker-deployer/internal/core/domain"
)

func TestMapDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrDeploymentNotFound, http.StatusNotFound},
		{"in progress", fmt.Errorf("lock deployment of churn: %w", domain.ErrDeploymentInProgress), http.StatusConflict},
		{"invalid request", domain.ErrInvalidInstanceCount, http.StatusBadRequest},
		{"missing config", fmt.Errorf("%w: SAGEMAKER_EXECUTION_ROLE_ARN", domain.ErrMissingConfig), http.StatusBadRequest},
		{"invalid config", fmt.Errorf("%w: LOCK_BACKEND", domain.ErrInvalidConfig), http.StatusBadRequest},
		{"no approved model", domain.ErrNoApprovedModel, http.StatusUnprocessableEntity},
		{"transient", domain.ErrTransient, http.StatusServiceUnavailable},
		{"shutting down", domain.ErrShuttingDown, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			mapDomainError(c, tt.err)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
