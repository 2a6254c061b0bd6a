package dto

import (
	"time"

	"github.com/google/uuid"

	"sagemaker-deployer/internal/core/domain"
)

// ============================================================================
// Deployment DTOs
// ============================================================================

// CreateDeploymentRequest starts a cutover. Omitted fields fall back to the
// server's configured defaults.
type CreateDeploymentRequest struct {
	ModelName     string `json:"model_name" binding:"required,max=63"`
	RoleARN       string `json:"role_arn"`
	InstanceType  string `json:"instance_type"`
	InstanceCount int    `json:"instance_count" binding:"omitempty,min=1"`
}

type DeploymentResponse struct {
	ID               uuid.UUID  `json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	ModelName        string     `json:"model_name"`
	ModelPackageARN  string     `json:"model_package_arn,omitempty"`
	ResourceName     string     `json:"resource_name,omitempty"`
	EndpointARN      string     `json:"endpoint_arn,omitempty"`
	InstanceType     string     `json:"instance_type"`
	InstanceCount    int        `json:"instance_count"`
	Action           string     `json:"action,omitempty"`
	Status           string     `json:"status"`
	LastError        string     `json:"last_error,omitempty"`
	DeletedResources []string   `json:"deleted_resources"`
	CleanupFailures  []string   `json:"cleanup_failures"`
}

type ListDeploymentsResponse struct {
	Items      []DeploymentResponse `json:"items"`
	Total      int                  `json:"total"`
	PageSize   int                  `json:"page_size"`
	NextOffset int                  `json:"next_offset"`
}

func ToDeploymentResponse(d *domain.Deployment) DeploymentResponse {
	deleted := d.DeletedResources
	if deleted == nil {
		deleted = []string{}
	}
	failures := d.CleanupFailures
	if failures == nil {
		failures = []string{}
	}
	return DeploymentResponse{
		ID:               d.ID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		FinishedAt:       d.FinishedAt,
		ModelName:        d.ModelName,
		ModelPackageARN:  d.ModelPackageARN,
		ResourceName:     d.ResourceName,
		EndpointARN:      d.EndpointARN,
		InstanceType:     d.InstanceType,
		InstanceCount:    d.InstanceCount,
		Action:           string(d.Action),
		Status:           string(d.Status),
		LastError:        d.LastError,
		DeletedResources: deleted,
		CleanupFailures:  failures,
	}
}

// ============================================================================
// Endpoint DTOs
// ============================================================================

type EndpointStatusResponse struct {
	Name             string    `json:"name"`
	ARN              string    `json:"arn"`
	ConfigName       string    `json:"config_name"`
	Status           string    `json:"status"`
	Readiness        string    `json:"readiness"`
	Reason           string    `json:"reason,omitempty"`
	CreationTime     time.Time `json:"creation_time"`
	LastModifiedTime time.Time `json:"last_modified_time"`
}

func ToEndpointStatusResponse(ep *domain.Endpoint, r domain.Readiness) EndpointStatusResponse {
	return EndpointStatusResponse{
		Name:             ep.Name,
		ARN:              ep.ARN,
		ConfigName:       ep.ConfigName,
		Status:           string(ep.Status),
		Readiness:        string(r.State),
		Reason:           r.Reason,
		CreationTime:     ep.CreationTime,
		LastModifiedTime: ep.LastModifiedTime,
	}
}
