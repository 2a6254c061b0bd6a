package ports

import (
	"context"

	"sagemaker-deployer/internal/core/domain"
)

const (
	SortByCreationTime  = "CreationTime"
	SortOrderDescending = "Descending"
)

// ModelPackageFilter narrows a model package listing
type ModelPackageFilter struct {
	GroupName      string
	ApprovalStatus domain.ApprovalStatus
	SortBy         string
	SortOrder      string
}

// ModelRegistry defines the contract for the platform's model registry
type ModelRegistry interface {
	// ListModelPackages lists every package of a group matching the filter
	ListModelPackages(ctx context.Context, filter ModelPackageFilter) ([]domain.ModelPackage, error)

	// ListModelPackageGroups lists groups whose name contains nameContains
	ListModelPackageGroups(ctx context.Context, nameContains string) ([]domain.ModelPackageGroup, error)

	// CreateModelPackageGroup creates a group and returns its ARN
	CreateModelPackageGroup(ctx context.Context, name, description string) (string, error)

	// CreateModelPackage registers a new package version and returns its ARN
	CreateModelPackage(ctx context.Context, groupName, description string, spec domain.InferenceSpec, status domain.ApprovalStatus) (string, error)
}

// ServingControlPlane defines the contract for model, endpoint config and
// endpoint operations. Create calls return the ARN of the new resource.
type ServingControlPlane interface {
	CreateModel(ctx context.Context, name, roleARN string, containers []domain.ContainerDefinition) (string, error)
	CreateEndpointConfig(ctx context.Context, name string, variants []domain.ProductionVariant) (string, error)
	CreateEndpoint(ctx context.Context, name, configName string) (string, error)
	UpdateEndpoint(ctx context.Context, name, configName string) (string, error)

	// DescribeEndpoint returns domain.ErrResourceNotFound when the endpoint does not exist
	DescribeEndpoint(ctx context.Context, name string) (*domain.Endpoint, error)

	// List calls filter by substring, the same way the platform does
	ListModels(ctx context.Context, nameContains string) ([]domain.ServingModel, error)
	ListEndpointConfigs(ctx context.Context, nameContains string) ([]domain.EndpointConfig, error)
	ListEndpoints(ctx context.Context, nameContains string) ([]domain.Endpoint, error)

	DeleteModel(ctx context.Context, name string) error
	DeleteEndpointConfig(ctx context.Context, name string) error
}
