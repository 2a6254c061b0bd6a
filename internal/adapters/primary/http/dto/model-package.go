package dto

import (
	"time"

	"sagemaker-deployer/internal/core/domain"
)

// ============================================================================
// Model Package DTOs
// ============================================================================

type RegisterModelPackageRequest struct {
	ModelName          string   `json:"model_name" binding:"required,max=63"`
	Description        string   `json:"description"`
	PackageDescription string   `json:"package_description"`
	Image              string   `json:"image" binding:"required"`
	ModelDataURL       string   `json:"model_data_url" binding:"required"`
	ContentTypes       []string `json:"content_types"`
	ResponseTypes      []string `json:"response_types"`
	ApprovalStatus     string   `json:"approval_status" binding:"omitempty,oneof=Approved Rejected PendingManualApproval"`
}

type ModelPackageResponse struct {
	ARN            string    `json:"arn"`
	GroupName      string    `json:"group_name"`
	Version        int64     `json:"version"`
	ApprovalStatus string    `json:"approval_status"`
	CreationTime   time.Time `json:"creation_time"`
}

func ToModelPackageResponse(p domain.ModelPackage) ModelPackageResponse {
	return ModelPackageResponse{
		ARN:            p.ARN,
		GroupName:      p.GroupName,
		Version:        p.Version,
		ApprovalStatus: string(p.ApprovalStatus),
		CreationTime:   p.CreationTime,
	}
}
