package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// advisoryLocker serializes deployments of a model with a session-level
// advisory lock. The lock lives on one pooled connection, which is held until
// release.
type advisoryLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLocker creates a DeploymentLocker backed by pg_try_advisory_lock
func NewAdvisoryLocker(pool *pgxpool.Pool) output.DeploymentLocker {
	return &advisoryLocker{pool: pool}
}

func (l *advisoryLocker) TryLock(ctx context.Context, modelName string) (output.ReleaseFunc, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, lockKey(modelName)).Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, domain.ErrDeploymentInProgress
	}

	return func(ctx context.Context) error {
		return unlock(ctx, pooledConn{conn}, modelName)
	}, nil
}

// sessionConn is the pooled connection that owns an advisory lock session.
type sessionConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
	Close(ctx context.Context) error
}

type pooledConn struct {
	*pgxpool.Conn
}

// Close removes the connection from the pool and closes it.
func (c pooledConn) Close(ctx context.Context) error {
	return c.Hijack().Close(ctx)
}

// unlock releases the advisory lock and returns the connection to the pool.
// When the unlock fails the session may still hold the lock, so the
// connection is closed instead.
func unlock(ctx context.Context, conn sessionConn, modelName string) error {
	var unlocked bool
	if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, lockKey(modelName)).Scan(&unlocked); err != nil {
		if cerr := conn.Close(ctx); cerr != nil {
			log.WithError(cerr).WithField("model_name", modelName).Warn("close lock connection failed")
		}
		return fmt.Errorf("advisory unlock: %w", err)
	}
	conn.Release()

	if !unlocked {
		log.WithField("model_name", modelName).Warn("advisory lock was not held at release")
	}
	return nil
}

func lockKey(modelName string) string {
	return "sagemaker-deployer/" + modelName
}
