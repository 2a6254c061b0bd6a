package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sagemaker-deployer/internal/core/domain"
	"sagemaker-deployer/internal/testutil"
)

func TestReadinessWaiter_WaitReady(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(&domain.Endpoint{Name: "churn", Status: domain.EndpointStatusCreating}, nil).Twice()
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(&domain.Endpoint{Name: "churn", ARN: "arn:endpoint/churn", Status: domain.EndpointStatusInService}, nil).Once()

	w := NewReadinessWaiter(control, time.Millisecond, time.Second, testRetry)
	ep, err := w.Wait(context.Background(), "churn", "")

	require.NoError(t, err)
	assert.Equal(t, "arn:endpoint/churn", ep.ARN)
	control.AssertNumberOfCalls(t, "DescribeEndpoint", 3)
}

func TestReadinessWaiter_WaitFailed(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").Return(&domain.Endpoint{
		Name:          "churn",
		Status:        domain.EndpointStatusFailed,
		FailureReason: "The primary container did not pass the ping health check",
	}, nil)

	w := NewReadinessWaiter(control, time.Millisecond, time.Second, testRetry)
	ep, err := w.Wait(context.Background(), "churn", "")

	assert.ErrorIs(t, err, domain.ErrEndpointFailed)
	assert.Contains(t, err.Error(), "ping health check")
	require.NotNil(t, ep)
	assert.Equal(t, domain.EndpointStatusFailed, ep.Status)
}

func TestReadinessWaiter_WaitTimeout(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(&domain.Endpoint{Name: "churn", Status: domain.EndpointStatusUpdating}, nil)

	w := NewReadinessWaiter(control, 5*time.Millisecond, 30*time.Millisecond, testRetry)
	_, err := w.Wait(context.Background(), "churn", "")

	assert.ErrorIs(t, err, domain.ErrReadinessTimeout)
	assert.NotErrorIs(t, err, domain.ErrEndpointFailed)
}

func TestReadinessWaiter_WaitCanceled(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(&domain.Endpoint{Name: "churn", Status: domain.EndpointStatusCreating}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewReadinessWaiter(control, time.Millisecond, time.Minute, testRetry)
	_, err := w.Wait(ctx, "churn", "")

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrReadinessTimeout)
}

func TestReadinessWaiter_TransientDescribeIsRetried(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(nil, fmt.Errorf("describe endpoint: %w", domain.ErrTransient)).Once()
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(&domain.Endpoint{Name: "churn", Status: domain.EndpointStatusInService}, nil).Once()

	w := NewReadinessWaiter(control, time.Millisecond, time.Second, testRetry)
	_, err := w.Wait(context.Background(), "churn", "")

	require.NoError(t, err)
	control.AssertNumberOfCalls(t, "DescribeEndpoint", 2)
}

func TestReadinessWaiter_PermanentDescribeError(t *testing.T) {
	control := new(testutil.MockControlPlane)
	boom := errors.New("access denied")
	control.On("DescribeEndpoint", mock.Anything, "churn").Return(nil, boom)

	w := NewReadinessWaiter(control, time.Millisecond, time.Second, testRetry)
	_, err := w.Wait(context.Background(), "churn", "")

	assert.ErrorIs(t, err, boom)
	control.AssertNumberOfCalls(t, "DescribeEndpoint", 1)
}

func TestReadinessWaiter_Check(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").
		Return(&domain.Endpoint{Name: "churn", Status: domain.EndpointStatusSystemUpdating}, nil)

	w := NewReadinessWaiter(control, 0, 0, testRetry)
	_, readiness, err := w.Check(context.Background(), "churn", "")

	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessPending, readiness.State)
	assert.Equal(t, DefaultPollInterval, w.interval)
}

func TestReadinessWaiter_WaitsOutStaleConfig(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").Return(&domain.Endpoint{
		Name:       "churn",
		ConfigName: "churn-2026-10-12-12-00-00",
		Status:     domain.EndpointStatusInService,
	}, nil).Once()
	control.On("DescribeEndpoint", mock.Anything, "churn").Return(&domain.Endpoint{
		Name:       "churn",
		ConfigName: "churn-2026-10-14-12-00-00",
		Status:     domain.EndpointStatusInService,
	}, nil).Once()

	w := NewReadinessWaiter(control, time.Millisecond, time.Second, testRetry)
	ep, err := w.Wait(context.Background(), "churn", "churn-2026-10-14-12-00-00")

	require.NoError(t, err)
	assert.Equal(t, "churn-2026-10-14-12-00-00", ep.ConfigName)
	control.AssertNumberOfCalls(t, "DescribeEndpoint", 2)
}

func TestReadinessWaiter_WaitRolledBack(t *testing.T) {
	control := new(testutil.MockControlPlane)
	control.On("DescribeEndpoint", mock.Anything, "churn").Return(&domain.Endpoint{
		Name:          "churn",
		ConfigName:    "churn-2026-10-12-12-00-00",
		Status:        domain.EndpointStatusInService,
		FailureReason: "update failed: health check",
	}, nil)

	w := NewReadinessWaiter(control, time.Millisecond, time.Second, testRetry)
	ep, err := w.Wait(context.Background(), "churn", "churn-2026-10-14-12-00-00")

	assert.ErrorIs(t, err, domain.ErrEndpointFailed)
	assert.Contains(t, err.Error(), "rolled back to churn-2026-10-12-12-00-00")
	require.NotNil(t, ep)
	control.AssertNumberOfCalls(t, "DescribeEndpoint", 1)
}
