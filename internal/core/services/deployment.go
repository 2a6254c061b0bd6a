package services

import (
	"context"

	"github.com/google/uuid"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// DeploymentService answers questions about past and running deployments.
type DeploymentService struct {
	repo   output.DeploymentRepository
	waiter *ReadinessWaiter
}

func NewDeploymentService(repo output.DeploymentRepository, waiter *ReadinessWaiter) *DeploymentService {
	return &DeploymentService{
		repo:   repo,
		waiter: waiter,
	}
}

func (s *DeploymentService) Get(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DeploymentService) List(ctx context.Context, filter output.DeploymentFilter) ([]*domain.Deployment, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// EndpointStatus describes the live endpoint once, without waiting
func (s *DeploymentService) EndpointStatus(ctx context.Context, name string) (*domain.Endpoint, domain.Readiness, error) {
	return s.waiter.Check(ctx, name, "")
}
