package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

const deploymentColumns = `
	id, created_at, updated_at, finished_at, model_name, model_package_arn,
	resource_name, endpoint_arn, instance_type, instance_count, action,
	status, last_error, deleted_resources, cleanup_failures
`

type deploymentRepo struct {
	pool *pgxpool.Pool
}

// NewDeploymentRepository creates a new DeploymentRepository
func NewDeploymentRepository(pool *pgxpool.Pool) output.DeploymentRepository {
	return &deploymentRepo{pool: pool}
}

func (r *deploymentRepo) Create(ctx context.Context, d *domain.Deployment) error {
	query := `
		INSERT INTO deployment (` + deploymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.CreatedAt, d.UpdatedAt, d.FinishedAt,
		d.ModelName, d.ModelPackageARN, d.ResourceName, d.EndpointARN,
		d.InstanceType, d.InstanceCount, string(d.Action), string(d.Status),
		d.LastError, textArray(d.DeletedResources), textArray(d.CleanupFailures),
	)
	if err != nil {
		return fmt.Errorf("create deployment: %w", err)
	}
	return nil
}

func (r *deploymentRepo) Update(ctx context.Context, d *domain.Deployment) error {
	query := `
		UPDATE deployment
		SET updated_at = $1, finished_at = $2, model_package_arn = $3,
			resource_name = $4, endpoint_arn = $5, action = $6, status = $7,
			last_error = $8, deleted_resources = $9, cleanup_failures = $10
		WHERE id = $11
	`

	result, err := r.pool.Exec(ctx, query,
		d.UpdatedAt, d.FinishedAt, d.ModelPackageARN,
		d.ResourceName, d.EndpointARN, string(d.Action), string(d.Status),
		d.LastError, textArray(d.DeletedResources), textArray(d.CleanupFailures),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("update deployment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *deploymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployment WHERE id = $1`

	d, err := scanDeployment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("get deployment by id: %w", err)
	}
	return d, nil
}

func (r *deploymentRepo) List(ctx context.Context, filter output.DeploymentFilter) ([]*domain.Deployment, int, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filter.ModelName != "" {
		conditions = append(conditions, fmt.Sprintf("model_name = $%d", argPos))
		args = append(args, filter.ModelName)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM deployment WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deployments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM deployment
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, deploymentColumns, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []*domain.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan deployment row: %w", err)
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate deployment rows: %w", err)
	}

	return deployments, total, nil
}

// scanDeployment reads one row in deploymentColumns order. pgx.Rows satisfies
// pgx.Row, so it serves both QueryRow and Query.
func scanDeployment(row pgx.Row) (*domain.Deployment, error) {
	d := &domain.Deployment{}
	var action, status string

	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.FinishedAt,
		&d.ModelName, &d.ModelPackageARN, &d.ResourceName, &d.EndpointARN,
		&d.InstanceType, &d.InstanceCount, &action, &status,
		&d.LastError, &d.DeletedResources, &d.CleanupFailures,
	)
	if err != nil {
		return nil, err
	}

	d.Action = domain.EndpointAction(action)
	d.Status = domain.DeploymentStatus(status)
	return d, nil
}

// textArray keeps a nil slice from being written as NULL
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
