package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sagemaker-deployer/internal/core/domain"
	"sagemaker-deployer/internal/testutil"
)

func churnRegistration() RegisterRequest {
	return RegisterRequest{
		ModelName:    "churn",
		Description:  "customer churn classifier",
		Image:        "123.dkr.ecr.us-east-1.amazonaws.com/xgboost:1",
		ModelDataURL: "s3://circleci-sagemaker/churn/model.tar.gz",
	}
}

func defaultSpec() domain.InferenceSpec {
	return domain.InferenceSpec{
		Image:                  "123.dkr.ecr.us-east-1.amazonaws.com/xgboost:1",
		ModelDataURL:           "s3://circleci-sagemaker/churn/model.tar.gz",
		SupportedContentTypes:  []string{"text/csv"},
		SupportedResponseTypes: []string{"text/csv"},
	}
}

func TestRegistrationService_CreatesGroup(t *testing.T) {
	registry := new(testutil.MockModelRegistry)
	svc := NewRegistrationService(registry, testRetry)

	// A name-contains search also returns groups that only share a prefix.
	registry.On("ListModelPackageGroups", mock.Anything, "churn").
		Return([]domain.ModelPackageGroup{{Name: "churn-legacy", ARN: "arn:group/churn-legacy"}}, nil)
	registry.On("CreateModelPackageGroup", mock.Anything, "churn", "customer churn classifier").
		Return("arn:group/churn", nil)
	registry.On("CreateModelPackage", mock.Anything, "churn", "", defaultSpec(), domain.ApprovalStatusApproved).
		Return("arn:package/churn/1", nil)

	result, err := svc.Register(context.Background(), churnRegistration())

	require.NoError(t, err)
	assert.True(t, result.GroupCreated)
	assert.Equal(t, "arn:group/churn", result.GroupARN)
	assert.Equal(t, "arn:package/churn/1", result.ModelPackageARN)
	registry.AssertExpectations(t)
}

func TestRegistrationService_ReusesGroup(t *testing.T) {
	registry := new(testutil.MockModelRegistry)
	svc := NewRegistrationService(registry, testRetry)

	registry.On("ListModelPackageGroups", mock.Anything, "churn").
		Return([]domain.ModelPackageGroup{{Name: "churn", ARN: "arn:group/churn"}}, nil)
	registry.On("CreateModelPackage", mock.Anything, "churn", "retrained", mock.Anything, domain.ApprovalStatusPendingManualApproval).
		Return("arn:package/churn/2", nil)

	req := churnRegistration()
	req.PackageDescription = "retrained"
	req.ApprovalStatus = domain.ApprovalStatusPendingManualApproval
	result, err := svc.Register(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, result.GroupCreated)
	assert.Equal(t, "arn:group/churn", result.GroupARN)
	registry.AssertNotCalled(t, "CreateModelPackageGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_InvalidRequest(t *testing.T) {
	svc := NewRegistrationService(new(testutil.MockModelRegistry), testRetry)

	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		wantErr error
	}{
		{"missing model name", func(r *RegisterRequest) { r.ModelName = "" }, domain.ErrInvalidModelName},
		{"missing image", func(r *RegisterRequest) { r.Image = "" }, domain.ErrInvalidImage},
		{"missing model data", func(r *RegisterRequest) { r.ModelDataURL = "" }, domain.ErrInvalidModelDataURL},
		{"unknown approval status", func(r *RegisterRequest) { r.ApprovalStatus = "Maybe" }, domain.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := churnRegistration()
			tt.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistrationService_CreatePackageFails(t *testing.T) {
	registry := new(testutil.MockModelRegistry)
	svc := NewRegistrationService(registry, testRetry)

	boom := errors.New("image not found")
	registry.On("ListModelPackageGroups", mock.Anything, "churn").
		Return([]domain.ModelPackageGroup{{Name: "churn", ARN: "arn:group/churn"}}, nil)
	registry.On("CreateModelPackage", mock.Anything, "churn", "", defaultSpec(), domain.ApprovalStatusApproved).
		Return("", boom)

	_, err := svc.Register(context.Background(), churnRegistration())
	assert.ErrorIs(t, err, boom)
	registry.AssertNumberOfCalls(t, "CreateModelPackage", 1)
}
