package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultReadyTimeout = 30 * time.Minute
)

// ReadinessWaiter polls an endpoint until it is InService, fails terminally,
// or the deadline passes.
type ReadinessWaiter struct {
	control  output.ServingControlPlane
	interval time.Duration
	timeout  time.Duration
	retry    RetryPolicy
}

func NewReadinessWaiter(
	control output.ServingControlPlane,
	interval time.Duration,
	timeout time.Duration,
	retry RetryPolicy,
) *ReadinessWaiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ReadinessWaiter{
		control:  control,
		interval: interval,
		timeout:  timeout,
		retry:    retry,
	}
}

// Check describes the endpoint once and classifies it against expectedConfig.
// An empty expectedConfig classifies the raw status only.
func (w *ReadinessWaiter) Check(ctx context.Context, name, expectedConfig string) (*domain.Endpoint, domain.Readiness, error) {
	ep, err := retryRead(ctx, w.retry, "describe endpoint", func() (*domain.Endpoint, error) {
		return w.control.DescribeEndpoint(ctx, name)
	})
	if err != nil {
		return nil, domain.Readiness{}, err
	}
	return ep, domain.ClassifyCutover(ep, expectedConfig), nil
}

// Wait blocks until the endpoint is InService on expectedConfig. A terminal
// status or a rollback to another config returns
// domain.ErrEndpointFailed and an expired deadline domain.ErrReadinessTimeout;
// cancellation of ctx returns its cause.
func (w *ReadinessWaiter) Wait(ctx context.Context, name, expectedConfig string) (*domain.Endpoint, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, w.timeout, domain.ErrReadinessTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger := log.WithFields(log.Fields{"endpoint_name": name, "endpoint_config": expectedConfig})
	for {
		ep, readiness, err := w.Check(ctx, name, expectedConfig)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("wait for endpoint %s: %w", name, context.Cause(ctx))
			}
			return nil, fmt.Errorf("describe endpoint %s: %w", name, err)
		}

		switch readiness.State {
		case domain.ReadinessReady:
			logger.WithField("endpoint_arn", ep.ARN).Info("endpoint is in service")
			return ep, nil
		case domain.ReadinessFailed:
			return ep, fmt.Errorf("%w: %s is %s: %s", domain.ErrEndpointFailed, name, readiness.Status, readiness.Reason)
		}

		logger.WithFields(log.Fields{
			"status":         readiness.Status,
			"serving_config": ep.ConfigName,
		}).Info("waiting for endpoint")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for endpoint %s: %w", name, context.Cause(ctx))
		case <-ticker.C:
		}
	}
}
