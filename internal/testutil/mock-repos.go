package testutil

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sagemaker-deployer/internal/core/domain"
	"sagemaker-deployer/internal/core/ports/output"
)

// MockModelRegistry is a mock of ModelRegistry.
type MockModelRegistry struct {
	mock.Mock
}

func (m *MockModelRegistry) ListModelPackages(ctx context.Context, filter ports.ModelPackageFilter) ([]domain.ModelPackage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModelPackage), args.Error(1)
}

func (m *MockModelRegistry) ListModelPackageGroups(ctx context.Context, nameContains string) ([]domain.ModelPackageGroup, error) {
	args := m.Called(ctx, nameContains)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModelPackageGroup), args.Error(1)
}

func (m *MockModelRegistry) CreateModelPackageGroup(ctx context.Context, name, description string) (string, error) {
	args := m.Called(ctx, name, description)
	return args.String(0), args.Error(1)
}

func (m *MockModelRegistry) CreateModelPackage(ctx context.Context, groupName, description string, spec domain.InferenceSpec, status domain.ApprovalStatus) (string, error) {
	args := m.Called(ctx, groupName, description, spec, status)
	return args.String(0), args.Error(1)
}

// MockControlPlane is a mock of ServingControlPlane.
type MockControlPlane struct {
	mock.Mock
}

func (m *MockControlPlane) CreateModel(ctx context.Context, name, roleARN string, containers []domain.ContainerDefinition) (string, error) {
	args := m.Called(ctx, name, roleARN, containers)
	return args.String(0), args.Error(1)
}

func (m *MockControlPlane) CreateEndpointConfig(ctx context.Context, name string, variants []domain.ProductionVariant) (string, error) {
	args := m.Called(ctx, name, variants)
	return args.String(0), args.Error(1)
}

func (m *MockControlPlane) CreateEndpoint(ctx context.Context, name, configName string) (string, error) {
	args := m.Called(ctx, name, configName)
	return args.String(0), args.Error(1)
}

func (m *MockControlPlane) UpdateEndpoint(ctx context.Context, name, configName string) (string, error) {
	args := m.Called(ctx, name, configName)
	return args.String(0), args.Error(1)
}

func (m *MockControlPlane) DescribeEndpoint(ctx context.Context, name string) (*domain.Endpoint, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Endpoint), args.Error(1)
}

func (m *MockControlPlane) ListModels(ctx context.Context, nameContains string) ([]domain.ServingModel, error) {
	args := m.Called(ctx, nameContains)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServingModel), args.Error(1)
}

func (m *MockControlPlane) ListEndpointConfigs(ctx context.Context, nameContains string) ([]domain.EndpointConfig, error) {
	args := m.Called(ctx, nameContains)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EndpointConfig), args.Error(1)
}

func (m *MockControlPlane) ListEndpoints(ctx context.Context, nameContains string) ([]domain.Endpoint, error) {
	args := m.Called(ctx, nameContains)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Endpoint), args.Error(1)
}

func (m *MockControlPlane) DeleteModel(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockControlPlane) DeleteEndpointConfig(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockObjectStore is a mock of ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	args := m.Called(ctx, bucket, key, body)
	return args.Error(0)
}

func (m *MockObjectStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	args := m.Called(ctx, bucket, key, data)
	return args.Error(0)
}

// MockDeploymentRepo is a mock of DeploymentRepository.
type MockDeploymentRepo struct {
	mock.Mock
}

func (m *MockDeploymentRepo) Create(ctx context.Context, d *domain.Deployment) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeploymentRepo) Update(ctx context.Context, d *domain.Deployment) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeploymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentRepo) List(ctx context.Context, filter ports.DeploymentFilter) ([]*domain.Deployment, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Deployment), args.Int(1), args.Error(2)
}

// MockLocker is a mock of DeploymentLocker. A successful TryLock returns a
// release func that records a "Release" call.
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, modelName string) (ports.ReleaseFunc, error) {
	args := m.Called(ctx, modelName)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return m.MethodCalled("Release", ctx, modelName).Error(0)
	}, nil
}
