package domain

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// DeploymentStatus represents the state of one cutover run
type DeploymentStatus string

const (
	DeploymentStatusRunning   DeploymentStatus = "RUNNING"
	DeploymentStatusSucceeded DeploymentStatus = "SUCCEEDED"
	DeploymentStatusFailed    DeploymentStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s DeploymentStatus) IsValid() bool {
	return s == DeploymentStatusRunning || s == DeploymentStatusSucceeded || s == DeploymentStatusFailed
}

// EndpointAction is the single branch of a cutover: create or update the stable endpoint
type EndpointAction string

const (
	EndpointActionNone   EndpointAction = ""
	EndpointActionCreate EndpointAction = "CREATE"
	EndpointActionUpdate EndpointAction = "UPDATE"
)

// ============================================================================
// Entities
// ============================================================================

// Deployment is the local record of one cutover run. All platform resources it
// names are owned remotely.
type Deployment struct {
	ID               uuid.UUID        `json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	FinishedAt       *time.Time       `json:"finished_at,omitempty"`
	ModelName        string           `json:"model_name"`
	ModelPackageARN  string           `json:"model_package_arn"`
	ResourceName     string           `json:"resource_name"`
	EndpointARN      string           `json:"endpoint_arn"`
	InstanceType     string           `json:"instance_type"`
	InstanceCount    int              `json:"instance_count"`
	Action           EndpointAction   `json:"action"`
	Status           DeploymentStatus `json:"status"`
	LastError        string           `json:"last_error"`
	DeletedResources []string         `json:"deleted_resources"`
	CleanupFailures  []string         `json:"cleanup_failures"`
}

// NewDeployment creates a new running Deployment with validation
func NewDeployment(modelName, instanceType string, instanceCount int) (*Deployment, error) {
	if modelName == "" {
		return nil, ErrInvalidModelName
	}
	if instanceType == "" {
		return nil, ErrInvalidInstanceType
	}
	if instanceCount < 1 {
		return nil, ErrInvalidInstanceCount
	}

	now := time.Now()
	return &Deployment{
		ID:               uuid.New(),
		CreatedAt:        now,
		UpdatedAt:        now,
		ModelName:        modelName,
		InstanceType:     instanceType,
		InstanceCount:    instanceCount,
		Status:           DeploymentStatusRunning,
		DeletedResources: []string{},
		CleanupFailures:  []string{},
	}, nil
}

// SetPackage records the package selected for this run
func (d *Deployment) SetPackage(arn string) {
	d.ModelPackageARN = arn
	d.UpdatedAt = time.Now()
}

// SetResources records the new model/config name and the endpoint action taken
func (d *Deployment) SetResources(resourceName string, action EndpointAction, endpointARN string) {
	d.ResourceName = resourceName
	d.Action = action
	d.EndpointARN = endpointARN
	d.UpdatedAt = time.Now()
}

// RecordDeleted appends a garbage-collected resource
func (d *Deployment) RecordDeleted(name string) {
	d.DeletedResources = append(d.DeletedResources, name)
	d.UpdatedAt = time.Now()
}

// RecordCleanupFailure appends a resource that could not be deleted
func (d *Deployment) RecordCleanupFailure(name, reason string) {
	d.CleanupFailures = append(d.CleanupFailures, name+": "+reason)
	d.UpdatedAt = time.Now()
}

// MarkSucceeded finishes the run successfully
func (d *Deployment) MarkSucceeded() {
	now := time.Now()
	d.Status = DeploymentStatusSucceeded
	d.LastError = ""
	d.FinishedAt = &now
	d.UpdatedAt = now
}

// MarkFailed finishes the run with an error
func (d *Deployment) MarkFailed(err string) {
	now := time.Now()
	d.Status = DeploymentStatusFailed
	d.LastError = err
	d.FinishedAt = &now
	d.UpdatedAt = now
}

// IsFinished returns true once the run reached a terminal status
func (d *Deployment) IsFinished() bool {
	return d.Status != DeploymentStatusRunning
}

// Clone returns a copy that does not share slices with d
func (d *Deployment) Clone() *Deployment {
	c := *d
	c.DeletedResources = append([]string{}, d.DeletedResources...)
	c.CleanupFailures = append([]string{}, d.CleanupFailures...)
	if d.FinishedAt != nil {
		t := *d.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
