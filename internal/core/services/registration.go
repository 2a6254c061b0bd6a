package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// RegistrationService pushes trained artifacts into the model registry so a
// later cutover can pick them up.
type RegistrationService struct {
	registry output.ModelRegistry
	retry    RetryPolicy
}

func NewRegistrationService(registry output.ModelRegistry, retry RetryPolicy) *RegistrationService {
	return &RegistrationService{
		registry: registry,
		retry:    retry,
	}
}

type RegisterRequest struct {
	ModelName          string
	Description        string
	PackageDescription string
	Image              string
	ModelDataURL       string
	ContentTypes       []string
	ResponseTypes      []string
	ApprovalStatus     domain.ApprovalStatus
}

func (r *RegisterRequest) normalize() error {
	if r.ModelName == "" {
		return domain.ErrInvalidModelName
	}
	if r.Image == "" {
		return domain.ErrInvalidImage
	}
	if r.ModelDataURL == "" {
		return domain.ErrInvalidModelDataURL
	}
	if r.ApprovalStatus == "" {
		r.ApprovalStatus = domain.ApprovalStatusApproved
	}
	if !r.ApprovalStatus.IsValid() {
		return fmt.Errorf("%w: approval status %q", domain.ErrInvalidConfig, r.ApprovalStatus)
	}
	if len(r.ContentTypes) == 0 {
		r.ContentTypes = []string{domain.DefaultContentType}
	}
	if len(r.ResponseTypes) == 0 {
		r.ResponseTypes = []string{domain.DefaultContentType}
	}
	return nil
}

type RegisterResult struct {
	GroupName       string `json:"group_name"`
	GroupARN        string `json:"group_arn,omitempty"`
	GroupCreated    bool   `json:"group_created"`
	ModelPackageARN string `json:"model_package_arn"`
}

// Register ensures the model package group exists and adds a package version.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	logger := log.WithField("model_name", req.ModelName)

	group, err := s.findGroup(ctx, req.ModelName)
	if err != nil {
		return nil, err
	}

	result := &RegisterResult{GroupName: req.ModelName}
	if group != nil {
		result.GroupARN = group.ARN
		logger.Info("using existing model package group")
	} else {
		arn, err := s.registry.CreateModelPackageGroup(ctx, req.ModelName, req.Description)
		if err != nil {
			return nil, fmt.Errorf("create model package group %s: %w", req.ModelName, err)
		}
		result.GroupARN = arn
		result.GroupCreated = true
		logger.WithField("group_arn", arn).Info("created model package group")
	}

	packageARN, err := s.registry.CreateModelPackage(ctx, req.ModelName, req.PackageDescription, domain.InferenceSpec{
		Image:                  req.Image,
		ModelDataURL:           req.ModelDataURL,
		SupportedContentTypes:  req.ContentTypes,
		SupportedResponseTypes: req.ResponseTypes,
	}, req.ApprovalStatus)
	if err != nil {
		return nil, fmt.Errorf("create model package in %s: %w", req.ModelName, err)
	}
	result.ModelPackageARN = packageARN
	registeredPackagesTotal.WithLabelValues(req.ModelName).Inc()
	logger.WithFields(log.Fields{
		"model_package_arn": packageARN,
		"approval_status":   req.ApprovalStatus,
	}).Info("registered model package")

	return result, nil
}

// findGroup returns the group named exactly name, or nil
func (s *RegistrationService) findGroup(ctx context.Context, name string) (*domain.ModelPackageGroup, error) {
	groups, err := retryRead(ctx, s.retry, "list model package groups", func() ([]domain.ModelPackageGroup, error) {
		return s.registry.ListModelPackageGroups(ctx, name)
	})
	if err != nil {
		return nil, fmt.Errorf("list model package groups: %w", err)
	}
	for i := range groups {
		if groups[i].Name == name {
			return &groups[i], nil
		}
	}
	return nil, nil
}
