package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

func TestDeploymentRepository_CRUD(t *testing.T) {
	repo := NewDeploymentRepository()
	ctx := context.Background()

	d, err := domain.NewDeployment("churn", "ml.t2.medium", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, d))

	// Stored records are copies.
	d.MarkSucceeded()
	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeploymentStatusRunning, got.Status)

	require.NoError(t, repo.Update(ctx, d))
	got, err = repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeploymentStatusSucceeded, got.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrDeploymentNotFound)

	other, _ := domain.NewDeployment("abalone", "ml.t2.medium", 1)
	assert.ErrorIs(t, repo.Update(ctx, other), domain.ErrDeploymentNotFound)
}

func TestDeploymentRepository_List(t *testing.T) {
	repo := NewDeploymentRepository()
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"churn", "abalone", "churn", "churn"} {
		d, err := domain.NewDeployment(name, "ml.t2.medium", 1)
		require.NoError(t, err)
		d.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, d))
	}

	list, total, err := repo.List(ctx, output.DeploymentFilter{ModelName: "churn", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	list, total, err = repo.List(ctx, output.DeploymentFilter{ModelName: "churn", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 1)

	list, _, err = repo.List(ctx, output.DeploymentFilter{Status: "FAILED"})
	require.NoError(t, err)
	assert.Empty(t, list)
}
