package sagemaker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"

	"sagemaker-deployer/internal/config"
	"sagemaker-deployer/internal/core/domain"
	output "sagemaker-deployer/internal/core/ports/output"
)

// Client talks to the SageMaker control plane. One client serves both the
// model registry and the serving operations.
type Client struct {
	api sagemakeriface.SageMakerAPI
}

var (
	_ output.ModelRegistry       = (*Client)(nil)
	_ output.ServingControlPlane = (*Client)(nil)
)

// NewClient creates a SageMaker client for the configured region
func NewClient(cfg *config.AWSConfig) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:                        aws.String(cfg.Region),
		CredentialsChainVerboseErrors: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewClientWithAPI(sagemaker.New(sess)), nil
}

// NewClientWithAPI wraps an existing SageMaker API implementation
func NewClientWithAPI(api sagemakeriface.SageMakerAPI) *Client {
	return &Client{api: api}
}

// ============================================================================
// Model registry
// ============================================================================

func (c *Client) ListModelPackages(ctx context.Context, filter output.ModelPackageFilter) ([]domain.ModelPackage, error) {
	input := &sagemaker.ListModelPackagesInput{
		ModelPackageGroupName: aws.String(filter.GroupName),
	}
	if filter.ApprovalStatus != "" {
		input.ModelApprovalStatus = aws.String(string(filter.ApprovalStatus))
	}
	if filter.SortBy != "" {
		input.SortBy = aws.String(filter.SortBy)
	}
	if filter.SortOrder != "" {
		input.SortOrder = aws.String(filter.SortOrder)
	}

	var packages []domain.ModelPackage
	err := c.api.ListModelPackagesPagesWithContext(ctx, input, func(page *sagemaker.ListModelPackagesOutput, _ bool) bool {
		for _, s := range page.ModelPackageSummaryList {
			packages = append(packages, domain.ModelPackage{
				ARN:            aws.StringValue(s.ModelPackageArn),
				GroupName:      aws.StringValue(s.ModelPackageGroupName),
				Version:        aws.Int64Value(s.ModelPackageVersion),
				ApprovalStatus: domain.ApprovalStatus(aws.StringValue(s.ModelApprovalStatus)),
				CreationTime:   aws.TimeValue(s.CreationTime),
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapError("list model packages", err)
	}
	return packages, nil
}

func (c *Client) ListModelPackageGroups(ctx context.Context, nameContains string) ([]domain.ModelPackageGroup, error) {
	input := &sagemaker.ListModelPackageGroupsInput{}
	if nameContains != "" {
		input.NameContains = aws.String(nameContains)
	}

	var groups []domain.ModelPackageGroup
	err := c.api.ListModelPackageGroupsPagesWithContext(ctx, input, func(page *sagemaker.ListModelPackageGroupsOutput, _ bool) bool {
		for _, s := range page.ModelPackageGroupSummaryList {
			groups = append(groups, domain.ModelPackageGroup{
				Name:         aws.StringValue(s.ModelPackageGroupName),
				ARN:          aws.StringValue(s.ModelPackageGroupArn),
				Description:  aws.StringValue(s.ModelPackageGroupDescription),
				CreationTime: aws.TimeValue(s.CreationTime),
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapError("list model package groups", err)
	}
	return groups, nil
}

func (c *Client) CreateModelPackageGroup(ctx context.Context, name, description string) (string, error) {
	input := &sagemaker.CreateModelPackageGroupInput{
		ModelPackageGroupName: aws.String(name),
	}
	if description != "" {
		input.ModelPackageGroupDescription = aws.String(description)
	}
	out, err := c.api.CreateModelPackageGroupWithContext(ctx, input)
	if err != nil {
		return "", wrapError("create model package group", err)
	}
	return aws.StringValue(out.ModelPackageGroupArn), nil
}

func (c *Client) CreateModelPackage(
	ctx context.Context,
	groupName, description string,
	spec domain.InferenceSpec,
	status domain.ApprovalStatus,
) (string, error) {
	input := &sagemaker.CreateModelPackageInput{
		ModelPackageGroupName: aws.String(groupName),
		ModelApprovalStatus:   aws.String(string(status)),
		InferenceSpecification: &sagemaker.InferenceSpecification{
			Containers: []*sagemaker.ModelPackageContainerDefinition{
				{
					Image:        aws.String(spec.Image),
					ModelDataUrl: aws.String(spec.ModelDataURL),
				},
			},
			SupportedContentTypes:      aws.StringSlice(spec.SupportedContentTypes),
			SupportedResponseMIMETypes: aws.StringSlice(spec.SupportedResponseTypes),
		},
	}
	if description != "" {
		input.ModelPackageDescription = aws.String(description)
	}
	out, err := c.api.CreateModelPackageWithContext(ctx, input)
	if err != nil {
		return "", wrapError("create model package", err)
	}
	return aws.StringValue(out.ModelPackageArn), nil
}

// ============================================================================
// Serving
// ============================================================================

func (c *Client) CreateModel(ctx context.Context, name, roleARN string, containers []domain.ContainerDefinition) (string, error) {
	input := &sagemaker.CreateModelInput{
		ModelName:        aws.String(name),
		ExecutionRoleArn: aws.String(roleARN),
	}
	for _, ctr := range containers {
		input.Containers = append(input.Containers, &sagemaker.ContainerDefinition{
			ModelPackageName: aws.String(ctr.ModelPackageName),
		})
	}
	out, err := c.api.CreateModelWithContext(ctx, input)
	if err != nil {
		return "", wrapError("create model", err)
	}
	return aws.StringValue(out.ModelArn), nil
}

func (c *Client) CreateEndpointConfig(ctx context.Context, name string, variants []domain.ProductionVariant) (string, error) {
	input := &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(name),
	}
	for _, v := range variants {
		input.ProductionVariants = append(input.ProductionVariants, &sagemaker.ProductionVariant{
			VariantName:          aws.String(v.VariantName),
			ModelName:            aws.String(v.ModelName),
			InstanceType:         aws.String(v.InstanceType),
			InitialInstanceCount: aws.Int64(int64(v.InstanceCount)),
			InitialVariantWeight: aws.Float64(v.InitialWeight),
		})
	}
	out, err := c.api.CreateEndpointConfigWithContext(ctx, input)
	if err != nil {
		return "", wrapError("create endpoint config", err)
	}
	return aws.StringValue(out.EndpointConfigArn), nil
}

func (c *Client) CreateEndpoint(ctx context.Context, name, configName string) (string, error) {
	out, err := c.api.CreateEndpointWithContext(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(name),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return "", wrapError("create endpoint", err)
	}
	return aws.StringValue(out.EndpointArn), nil
}

func (c *Client) UpdateEndpoint(ctx context.Context, name, configName string) (string, error) {
	out, err := c.api.UpdateEndpointWithContext(ctx, &sagemaker.UpdateEndpointInput{
		EndpointName:       aws.String(name),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return "", wrapError("update endpoint", err)
	}
	return aws.StringValue(out.EndpointArn), nil
}

func (c *Client) DescribeEndpoint(ctx context.Context, name string) (*domain.Endpoint, error) {
	out, err := c.api.DescribeEndpointWithContext(ctx, &sagemaker.DescribeEndpointInput{
		EndpointName: aws.String(name),
	})
	if err != nil {
		return nil, wrapError("describe endpoint", err)
	}
	return &domain.Endpoint{
		Name:             aws.StringValue(out.EndpointName),
		ARN:              aws.StringValue(out.EndpointArn),
		ConfigName:       aws.StringValue(out.EndpointConfigName),
		Status:           domain.EndpointStatus(aws.StringValue(out.EndpointStatus)),
		FailureReason:    aws.StringValue(out.FailureReason),
		CreationTime:     aws.TimeValue(out.CreationTime),
		LastModifiedTime: aws.TimeValue(out.LastModifiedTime),
	}, nil
}

func (c *Client) ListModels(ctx context.Context, nameContains string) ([]domain.ServingModel, error) {
	input := &sagemaker.ListModelsInput{}
	if nameContains != "" {
		input.NameContains = aws.String(nameContains)
	}

	var models []domain.ServingModel
	err := c.api.ListModelsPagesWithContext(ctx, input, func(page *sagemaker.ListModelsOutput, _ bool) bool {
		for _, m := range page.Models {
			models = append(models, domain.ServingModel{
				Name:         aws.StringValue(m.ModelName),
				ARN:          aws.StringValue(m.ModelArn),
				CreationTime: aws.TimeValue(m.CreationTime),
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapError("list models", err)
	}
	return models, nil
}

func (c *Client) ListEndpointConfigs(ctx context.Context, nameContains string) ([]domain.EndpointConfig, error) {
	input := &sagemaker.ListEndpointConfigsInput{}
	if nameContains != "" {
		input.NameContains = aws.String(nameContains)
	}

	var configs []domain.EndpointConfig
	err := c.api.ListEndpointConfigsPagesWithContext(ctx, input, func(page *sagemaker.ListEndpointConfigsOutput, _ bool) bool {
		for _, ec := range page.EndpointConfigs {
			configs = append(configs, domain.EndpointConfig{
				Name:         aws.StringValue(ec.EndpointConfigName),
				ARN:          aws.StringValue(ec.EndpointConfigArn),
				CreationTime: aws.TimeValue(ec.CreationTime),
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapError("list endpoint configs", err)
	}
	return configs, nil
}

func (c *Client) ListEndpoints(ctx context.Context, nameContains string) ([]domain.Endpoint, error) {
	input := &sagemaker.ListEndpointsInput{}
	if nameContains != "" {
		input.NameContains = aws.String(nameContains)
	}

	var endpoints []domain.Endpoint
	err := c.api.ListEndpointsPagesWithContext(ctx, input, func(page *sagemaker.ListEndpointsOutput, _ bool) bool {
		for _, ep := range page.Endpoints {
			endpoints = append(endpoints, domain.Endpoint{
				Name:             aws.StringValue(ep.EndpointName),
				ARN:              aws.StringValue(ep.EndpointArn),
				Status:           domain.EndpointStatus(aws.StringValue(ep.EndpointStatus)),
				CreationTime:     aws.TimeValue(ep.CreationTime),
				LastModifiedTime: aws.TimeValue(ep.LastModifiedTime),
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapError("list endpoints", err)
	}
	return endpoints, nil
}

func (c *Client) DeleteModel(ctx context.Context, name string) error {
	_, err := c.api.DeleteModelWithContext(ctx, &sagemaker.DeleteModelInput{
		ModelName: aws.String(name),
	})
	if err != nil {
		return wrapError("delete model", err)
	}
	return nil
}

func (c *Client) DeleteEndpointConfig(ctx context.Context, name string) error {
	_, err := c.api.DeleteEndpointConfigWithContext(ctx, &sagemaker.DeleteEndpointConfigInput{
		EndpointConfigName: aws.String(name),
	})
	if err != nil {
		return wrapError("delete endpoint config", err)
	}
	return nil
}

// wrapError tags throttling and retryable failures with domain.ErrTransient
// and missing resources with domain.ErrResourceNotFound.
func wrapError(op string, err error) error {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case request.IsErrorThrottle(aerr) || request.IsErrorRetryable(aerr):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	case aerr.Code() == sagemaker.ErrCodeResourceNotFound,
		aerr.Code() == "ValidationException" && strings.HasPrefix(aerr.Message(), "Could not find"):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrResourceNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
