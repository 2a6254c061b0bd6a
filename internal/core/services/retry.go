package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/core/domain"
)

// RetryPolicy bounds the exponential backoff used for idempotent platform reads.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxRetries      uint64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		MaxElapsedTime:  2 * time.Minute,
		MaxRetries:      5,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = p.MaxElapsedTime

	var bo backoff.BackOff = b
	if p.MaxRetries > 0 {
		bo = backoff.WithMaxRetries(bo, p.MaxRetries)
	}
	return backoff.WithContext(bo, ctx)
}

// retryRead runs a read-only platform call, retrying only errors marked
// domain.ErrTransient. Anything else is returned on the first failure.
func retryRead[T any](ctx context.Context, p RetryPolicy, op string, fn func() (T, error)) (T, error) {
	var out T
	err := backoff.RetryNotify(
		func() error {
			v, err := fn()
			if err != nil {
				if errors.Is(err, domain.ErrTransient) {
					return err
				}
				return backoff.Permanent(err)
			}
			out = v
			return nil
		},
		p.backOff(ctx),
		func(err error, next time.Duration) {
			log.WithError(err).WithFields(log.Fields{
				"operation": op,
				"retry_in":  next.String(),
			}).Warn("transient platform error, retrying")
		},
	)
	return out, err
}
