package kubernetes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"sagemaker-deployer/internal/config"
	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

var leaseGVR = schema.GroupVersionResource{
	Group:    "coordination.k8s.io",
	Version:  "v1",
	Resource: "leases",
}

const defaultLeaseDuration = time.Hour

// leaseLocker serializes deployments across processes with a coordination
// Lease per model. A lease whose renewTime plus duration has passed is
// considered abandoned and may be taken over.
type leaseLocker struct {
	client    dynamic.Interface
	namespace string
	identity  string
	duration  time.Duration
	now       func() time.Time
}

// NewLeaseLocker creates a DeploymentLocker backed by Kubernetes Leases
func NewLeaseLocker(cfg *config.KubernetesConfig) (output.DeploymentLocker, error) {
	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	return NewLeaseLockerWithClient(client, cfg.Namespace, cfg.Identity, cfg.LeaseDuration), nil
}

// NewLeaseLockerWithClient creates a lease locker on an existing dynamic client
func NewLeaseLockerWithClient(client dynamic.Interface, namespace, identity string, duration time.Duration) output.DeploymentLocker {
	if namespace == "" {
		namespace = "default"
	}
	if identity == "" {
		identity, _ = os.Hostname()
	}
	if duration <= 0 {
		duration = defaultLeaseDuration
	}
	return &leaseLocker{
		client:    client,
		namespace: namespace,
		identity:  identity,
		duration:  duration,
		now:       time.Now,
	}
}

func (l *leaseLocker) TryLock(ctx context.Context, modelName string) (output.ReleaseFunc, error) {
	name := leaseName(modelName)
	leases := l.client.Resource(leaseGVR).Namespace(l.namespace)

	existing, err := leases.Get(ctx, name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		_, err = leases.Create(ctx, l.buildLease(name, modelName), metav1.CreateOptions{})
		if apierrors.IsAlreadyExists(err) {
			return nil, domain.ErrDeploymentInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("create lease %s: %w", name, err)
		}
	case err != nil:
		return nil, fmt.Errorf("get lease %s: %w", name, err)
	default:
		if l.heldByOther(existing) {
			return nil, domain.ErrDeploymentInProgress
		}
		log.WithFields(log.Fields{
			"lease":  name,
			"holder": holderOf(existing),
		}).Warn("taking over expired deployment lease")

		l.setHolder(existing)
		_, err = leases.Update(ctx, existing, metav1.UpdateOptions{})
		if apierrors.IsConflict(err) {
			return nil, domain.ErrDeploymentInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("update lease %s: %w", name, err)
		}
	}

	return func(ctx context.Context) error {
		return l.release(ctx, name)
	}, nil
}

func (l *leaseLocker) release(ctx context.Context, name string) error {
	leases := l.client.Resource(leaseGVR).Namespace(l.namespace)

	obj, err := leases.Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get lease %s: %w", name, err)
	}
	if holderOf(obj) != l.identity {
		return nil
	}

	rv := obj.GetResourceVersion()
	err = leases.Delete(ctx, name, metav1.DeleteOptions{
		Preconditions: &metav1.Preconditions{ResourceVersion: &rv},
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete lease %s: %w", name, err)
	}
	return nil
}

func (l *leaseLocker) heldByOther(obj *unstructured.Unstructured) bool {
	holder := holderOf(obj)
	if holder == "" {
		return false
	}

	renewed, _, _ := unstructured.NestedString(obj.Object, "spec", "renewTime")
	seconds, found, _ := unstructured.NestedInt64(obj.Object, "spec", "leaseDurationSeconds")
	if !found {
		seconds = int64(l.duration.Seconds())
	}
	renewedAt, err := time.Parse(metav1.RFC3339Micro, renewed)
	if err != nil {
		return true
	}
	return l.now().Before(renewedAt.Add(time.Duration(seconds) * time.Second))
}

func (l *leaseLocker) buildLease(name, modelName string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "coordination.k8s.io/v1",
			"kind":       "Lease",
			"metadata": map[string]interface{}{
				"name": name,
				"labels": map[string]interface{}{
					"app.kubernetes.io/managed-by":  "sagemaker-deployer",
					"sagemaker-deployer/model-name": strings.ToLower(modelName),
				},
			},
			"spec": map[string]interface{}{},
		},
	}
	l.setHolder(obj)
	return obj
}

func (l *leaseLocker) setHolder(obj *unstructured.Unstructured) {
	now := l.now().UTC().Format(metav1.RFC3339Micro)
	_ = unstructured.SetNestedField(obj.Object, l.identity, "spec", "holderIdentity")
	_ = unstructured.SetNestedField(obj.Object, int64(l.duration.Seconds()), "spec", "leaseDurationSeconds")
	_ = unstructured.SetNestedField(obj.Object, now, "spec", "acquireTime")
	_ = unstructured.SetNestedField(obj.Object, now, "spec", "renewTime")
}

func holderOf(obj *unstructured.Unstructured) string {
	holder, _, _ := unstructured.NestedString(obj.Object, "spec", "holderIdentity")
	return holder
}

func leaseName(modelName string) string {
	return "sagemaker-deploy-" + strings.ToLower(modelName)
}

var _ output.DeploymentLocker = (*leaseLocker)(nil)
