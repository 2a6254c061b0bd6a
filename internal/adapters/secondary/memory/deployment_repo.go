package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// DeploymentRepository keeps the deployment ledger in process memory. The
// server falls back to it when no database is configured.
type DeploymentRepository struct {
	mu          sync.RWMutex
	deployments map[uuid.UUID]*domain.Deployment
}

func NewDeploymentRepository() *DeploymentRepository {
	return &DeploymentRepository{deployments: make(map[uuid.UUID]*domain.Deployment)}
}

func (r *DeploymentRepository) Create(_ context.Context, d *domain.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deployments[d.ID] = d.Clone()
	return nil
}

func (r *DeploymentRepository) Update(_ context.Context, d *domain.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deployments[d.ID]; !ok {
		return domain.ErrDeploymentNotFound
	}
	r.deployments[d.ID] = d.Clone()
	return nil
}

func (r *DeploymentRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deployments[id]
	if !ok {
		return nil, domain.ErrDeploymentNotFound
	}
	return d.Clone(), nil
}

func (r *DeploymentRepository) List(_ context.Context, filter output.DeploymentFilter) ([]*domain.Deployment, int, error) {
	r.mu.RLock()
	matched := lo.Filter(lo.Values(r.deployments), func(d *domain.Deployment, _ int) bool {
		return (filter.ModelName == "" || d.ModelName == filter.ModelName) &&
			(filter.Status == "" || string(d.Status) == filter.Status)
	})
	matched = lo.Map(matched, func(d *domain.Deployment, _ int) *domain.Deployment { return d.Clone() })
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*domain.Deployment{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

var _ output.DeploymentRepository = (*DeploymentRepository)(nil)
