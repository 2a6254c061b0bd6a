package ports

import (
	"context"

	"github.com/google/uuid"

	"sagemaker-deployer/internal/core/domain"
)

// DeploymentFilter defines filters for listing deployments
type DeploymentFilter struct {
	ModelName string
	Status    string
	Limit     int
	Offset    int
}

// DeploymentRepository defines the contract for the deployment ledger
type DeploymentRepository interface {
	// Create inserts a new deployment record
	Create(ctx context.Context, d *domain.Deployment) error

	// Update overwrites the mutable fields of a deployment record
	Update(ctx context.Context, d *domain.Deployment) error

	// GetByID retrieves a deployment, domain.ErrDeploymentNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deployment, error)

	// List lists deployments newest first
	List(ctx context.Context, filter DeploymentFilter) ([]*domain.Deployment, int, error)
}

// ReleaseFunc gives a held deployment lock back
type ReleaseFunc func(ctx context.Context) error

// DeploymentLocker serializes deployments of the same logical model name
type DeploymentLocker interface {
	// TryLock acquires the lock without waiting. It returns
	// domain.ErrDeploymentInProgress when another run holds it.
	TryLock(ctx context.Context, modelName string) (ReleaseFunc, error)
}
