package domain

import "errors"

// ============================================================================
// Configuration Errors
// ============================================================================

var (
	ErrMissingConfig = errors.New("missing required configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrInvalidModelName     = errors.New("model name is required")
	ErrInvalidRoleARN       = errors.New("execution role ARN is required")
	ErrInvalidInstanceType  = errors.New("endpoint instance type is required")
	ErrInvalidInstanceCount = errors.New("endpoint instance count must be at least 1")
	ErrInvalidResourceName  = errors.New("resource name is not a valid platform name")
	ErrInvalidImage         = errors.New("inference image is required")
	ErrInvalidModelDataURL  = errors.New("model data URL is required")
	ErrInvalidBucket        = errors.New("bucket is required")
	ErrInvalidStageObject   = errors.New("stage object needs exactly one source and a channel")
)

// ============================================================================
// Precondition Errors
// ============================================================================

var (
	ErrNoApprovedModel = errors.New("no approved model package found")
)

// ============================================================================
// Platform Errors
// ============================================================================

var (
	// ErrTransient marks platform failures that are safe to retry for reads
	// (throttling, 5xx, connection resets).
	ErrTransient        = errors.New("transient platform error")
	ErrResourceNotFound = errors.New("platform resource not found")
)

// ============================================================================
// Readiness Errors
// ============================================================================

var (
	ErrEndpointFailed   = errors.New("endpoint entered a terminal failure status")
	ErrReadinessTimeout = errors.New("endpoint did not reach InService before the deadline")
)

// ============================================================================
// Deployment Errors
// ============================================================================

var (
	ErrDeploymentInProgress = errors.New("another deployment of this model is in progress")
	ErrDeploymentNotFound   = errors.New("deployment not found")
	ErrShuttingDown         = errors.New("deployer is shutting down")
)
