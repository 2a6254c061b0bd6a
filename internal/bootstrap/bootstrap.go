// Package bootstrap builds the adapters both entry points share.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/adapters/secondary/kubernetes"
	"sagemaker-deployer/internal/adapters/secondary/memory"
	"sagemaker-deployer/internal/adapters/secondary/postgres"
	"sagemaker-deployer/internal/config"
	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
	"sagemaker-deployer/internal/core/services"
)

// OpenPool connects to the ledger database and creates its schema.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("database connection established")
	return pool, nil
}

// NewLocker selects the deployment lock backend. The postgres backend needs
// an open pool.
func NewLocker(cfg *config.Config, pool *pgxpool.Pool) (output.DeploymentLocker, error) {
	switch cfg.Lock.Backend {
	case config.LockBackendPostgres:
		if pool == nil {
			return nil, fmt.Errorf("%w: LOCK_BACKEND=postgres requires DB_ENABLED", domain.ErrInvalidConfig)
		}
		log.Info("using postgres advisory lock")
		return postgres.NewAdvisoryLocker(pool), nil
	case config.LockBackendKubernetes:
		locker, err := kubernetes.NewLeaseLocker(&cfg.Kubernetes)
		if err != nil {
			return nil, fmt.Errorf("create lease locker: %w", err)
		}
		log.WithField("namespace", cfg.Kubernetes.Namespace).Info("using kubernetes lease lock")
		return locker, nil
	default:
		log.Info("using in-process lock")
		return memory.NewLocker(), nil
	}
}

// RetryPolicy converts the configured retry settings
func RetryPolicy(cfg config.RetryConfig) services.RetryPolicy {
	return services.RetryPolicy{
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
		MaxElapsedTime:  cfg.MaxElapsedTime,
		MaxRetries:      cfg.MaxRetries,
	}
}
