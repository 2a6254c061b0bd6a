package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEndpointStatus(t *testing.T) {
	tests := []struct {
		status     EndpointStatus
		reason     string
		wantState  ReadinessState
		wantReason string
	}{
		{EndpointStatusInService, "", ReadinessReady, ""},
		{EndpointStatusCreating, "", ReadinessPending, ""},
		{EndpointStatusUpdating, "", ReadinessPending, ""},
		{EndpointStatusSystemUpdating, "", ReadinessPending, ""},
		{EndpointStatusRollingBack, "", ReadinessPending, ""},
		{EndpointStatus("SomethingNew"), "", ReadinessPending, ""},
		{EndpointStatusFailed, "image not found", ReadinessFailed, "image not found"},
		{EndpointStatusOutOfService, "", ReadinessFailed, "endpoint status OutOfService"},
		{EndpointStatusDeleting, "", ReadinessFailed, "endpoint status Deleting"},
		{EndpointStatusUpdateRollbackFailed, "rollback failed", ReadinessFailed, "rollback failed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := ClassifyEndpointStatus(tt.status, tt.reason)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestClassifyCutover(t *testing.T) {
	const (
		current = "churn-2026-10-14-12-00-00-abc123"
		old     = "churn-2026-10-12-12-00-00-def456"
	)
	tests := []struct {
		name       string
		ep         Endpoint
		expected   string
		wantState  ReadinessState
		wantReason string
	}{
		{"serving new config", Endpoint{Status: EndpointStatusInService, ConfigName: current}, current, ReadinessReady, ""},
		{"stale read of old config", Endpoint{Status: EndpointStatusInService, ConfigName: old}, current, ReadinessPending, ""},
		{
			"rolled back to old config",
			Endpoint{Status: EndpointStatusInService, ConfigName: old, FailureReason: "update failed: health check"},
			current,
			ReadinessFailed,
			"rolled back to " + old + ": update failed: health check",
		},
		{"still updating", Endpoint{Status: EndpointStatusUpdating, ConfigName: old}, current, ReadinessPending, ""},
		{"terminal failure", Endpoint{Status: EndpointStatusFailed, ConfigName: current, FailureReason: "oom"}, current, ReadinessFailed, "oom"},
		{"no expected config", Endpoint{Status: EndpointStatusInService, ConfigName: old, FailureReason: "old news"}, "", ReadinessReady, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCutover(&tt.ep, tt.expected)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.ep.Status, got.Status)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestSnapshot_HasEndpoint(t *testing.T) {
	s := Snapshot{Endpoints: []Endpoint{{Name: "churn-v2"}, {Name: "churn"}}}
	assert.True(t, s.HasEndpoint("churn"))
	assert.False(t, s.HasEndpoint("chur"))
	assert.False(t, Snapshot{}.HasEndpoint("churn"))
}
