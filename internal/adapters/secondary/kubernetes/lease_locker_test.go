package kubernetes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/dynamic/fake"

	"sagemaker-deployer/internal/core/domain"
)

func newTestLocker(client dynamic.Interface, identity string, now time.Time) *leaseLocker {
	l := NewLeaseLockerWithClient(client, "ml", identity, time.Hour).(*leaseLocker)
	l.now = func() time.Time { return now }
	return l
}

func TestLeaseLocker_SerializesHolders(t *testing.T) {
	client := fake.NewSimpleDynamicClient(runtime.NewScheme())
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	a := newTestLocker(client, "runner-a", now)
	b := newTestLocker(client, "runner-b", now)
	ctx := context.Background()

	release, err := a.TryLock(ctx, "Churn")
	require.NoError(t, err)

	lease, err := client.Resource(leaseGVR).Namespace("ml").Get(ctx, "sagemaker-deploy-churn", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "runner-a", holderOf(lease))

	_, err = b.TryLock(ctx, "Churn")
	assert.ErrorIs(t, err, domain.ErrDeploymentInProgress)

	require.NoError(t, release(ctx))

	releaseB, err := b.TryLock(ctx, "Churn")
	require.NoError(t, err)
	require.NoError(t, releaseB(ctx))
}

func TestLeaseLocker_DifferentModelsDoNotConflict(t *testing.T) {
	client := fake.NewSimpleDynamicClient(runtime.NewScheme())
	l := newTestLocker(client, "runner-a", time.Now())
	ctx := context.Background()

	_, err := l.TryLock(ctx, "churn")
	require.NoError(t, err)
	_, err = l.TryLock(ctx, "abalone")
	assert.NoError(t, err)
}

func TestLeaseLocker_TakesOverExpiredLease(t *testing.T) {
	client := fake.NewSimpleDynamicClient(runtime.NewScheme())
	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	a := newTestLocker(client, "runner-a", start)
	b := newTestLocker(client, "runner-b", start.Add(2*time.Hour))
	ctx := context.Background()

	releaseA, err := a.TryLock(ctx, "churn")
	require.NoError(t, err)

	_, err = b.TryLock(ctx, "churn")
	require.NoError(t, err)

	// The stale holder must not delete a lease it no longer owns.
	require.NoError(t, releaseA(ctx))
	lease, err := client.Resource(leaseGVR).Namespace("ml").Get(ctx, "sagemaker-deploy-churn", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "runner-b", holderOf(lease))
}
