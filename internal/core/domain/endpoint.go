package domain

import (
	"time"
)

// ============================================================================
// Value Objects
// ============================================================================

// EndpointStatus mirrors the platform's DescribeEndpoint EndpointStatus
type EndpointStatus string

const (
	EndpointStatusOutOfService         EndpointStatus = "OutOfService"
	EndpointStatusCreating             EndpointStatus = "Creating"
	EndpointStatusUpdating             EndpointStatus = "Updating"
	EndpointStatusSystemUpdating       EndpointStatus = "SystemUpdating"
	EndpointStatusRollingBack          EndpointStatus = "RollingBack"
	EndpointStatusInService            EndpointStatus = "InService"
	EndpointStatusDeleting             EndpointStatus = "Deleting"
	EndpointStatusFailed               EndpointStatus = "Failed"
	EndpointStatusUpdateRollbackFailed EndpointStatus = "UpdateRollbackFailed"
)

// ReadinessState is the outcome of one readiness check
type ReadinessState string

const (
	ReadinessPending ReadinessState = "PENDING"
	ReadinessReady   ReadinessState = "READY"
	ReadinessFailed  ReadinessState = "FAILED"
)

// Readiness is a tagged readiness result. Reason is only set for ReadinessFailed.
type Readiness struct {
	State  ReadinessState
	Status EndpointStatus
	Reason string
}

// ClassifyEndpointStatus maps a raw endpoint status onto Pending, Ready or Failed.
// Unknown statuses are treated as still in progress.
func ClassifyEndpointStatus(status EndpointStatus, failureReason string) Readiness {
	switch status {
	case EndpointStatusInService:
		return Readiness{State: ReadinessReady, Status: status}
	case EndpointStatusFailed,
		EndpointStatusOutOfService,
		EndpointStatusDeleting,
		EndpointStatusUpdateRollbackFailed:
		reason := failureReason
		if reason == "" {
			reason = "endpoint status " + string(status)
		}
		return Readiness{State: ReadinessFailed, Status: status, Reason: reason}
	default:
		return Readiness{State: ReadinessPending, Status: status}
	}
}

// ClassifyCutover classifies an endpoint that should end up serving
// expectedConfig. InService on another config is a rollback when the platform
// reports a failure reason, and a stale read otherwise. An empty expectedConfig
// falls back to ClassifyEndpointStatus.
func ClassifyCutover(ep *Endpoint, expectedConfig string) Readiness {
	readiness := ClassifyEndpointStatus(ep.Status, ep.FailureReason)
	if readiness.State != ReadinessReady || expectedConfig == "" || ep.ConfigName == expectedConfig {
		return readiness
	}
	if ep.FailureReason != "" {
		return Readiness{
			State:  ReadinessFailed,
			Status: ep.Status,
			Reason: "rolled back to " + ep.ConfigName + ": " + ep.FailureReason,
		}
	}
	return Readiness{State: ReadinessPending, Status: ep.Status}
}

const (
	DefaultVariantName   = "AllTraffic"
	DefaultVariantWeight = 1.0
)

// ContainerDefinition binds a serving model to a registered package
type ContainerDefinition struct {
	ModelPackageName string
}

// ProductionVariant is one weighted model slot of an endpoint config
type ProductionVariant struct {
	VariantName   string
	ModelName     string
	InstanceType  string
	InstanceCount int
	InitialWeight float64
}

// ============================================================================
// Entities
// ============================================================================

// ServingModel is the platform-side Model resource bound to one package.
type ServingModel struct {
	Name         string    `json:"name"`
	ARN          string    `json:"arn"`
	CreationTime time.Time `json:"creation_time"`
}

type EndpointConfig struct {
	Name         string    `json:"name"`
	ARN          string    `json:"arn"`
	CreationTime time.Time `json:"creation_time"`
}

// Endpoint is the live, stable-named serving resource
type Endpoint struct {
	Name             string         `json:"name"`
	ARN              string         `json:"arn"`
	ConfigName       string         `json:"config_name,omitempty"`
	Status           EndpointStatus `json:"status"`
	FailureReason    string         `json:"failure_reason,omitempty"`
	CreationTime     time.Time      `json:"creation_time"`
	LastModifiedTime time.Time      `json:"last_modified_time"`
}

// Snapshot holds the resources that existed before a deployment started
type Snapshot struct {
	Models          []ServingModel
	EndpointConfigs []EndpointConfig
	Endpoints       []Endpoint
}

// HasEndpoint reports whether an endpoint with exactly this name was captured
func (s Snapshot) HasEndpoint(name string) bool {
	for _, ep := range s.Endpoints {
		if ep.Name == name {
			return true
		}
	}
	return false
}
