package domain

import (
	"sort"
	"time"
)

type ApprovalStatus string

const (
	ApprovalStatusApproved              ApprovalStatus = "Approved"
	ApprovalStatusRejected              ApprovalStatus = "Rejected"
	ApprovalStatusPendingManualApproval ApprovalStatus = "PendingManualApproval"
)

// IsValid checks if the approval status is one the registry accepts
func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected || s == ApprovalStatusPendingManualApproval
}

const DefaultContentType = "text/csv"

// ModelPackageGroup groups every package registered under one logical model name.
type ModelPackageGroup struct {
	Name         string    `json:"name"`
	ARN          string    `json:"arn"`
	Description  string    `json:"description"`
	CreationTime time.Time `json:"creation_time"`
}

// ModelPackage is an immutable, versioned reference to trained artifacts.
type ModelPackage struct {
	ARN            string         `json:"arn"`
	GroupName      string         `json:"group_name"`
	Version        int64          `json:"version"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreationTime   time.Time      `json:"creation_time"`
}

// InferenceSpec describes the serving container of a package.
type InferenceSpec struct {
	Image                  string
	ModelDataURL           string
	SupportedContentTypes  []string
	SupportedResponseTypes []string
}

// LatestApproved picks the approved package with the newest creation time.
// Equal creation times fall back to the higher version, then the higher ARN,
// so the result never depends on the order the registry listed them in.
func LatestApproved(packages []ModelPackage) (ModelPackage, error) {
	approved := make([]ModelPackage, 0, len(packages))
	for _, p := range packages {
		if p.ApprovalStatus == ApprovalStatusApproved {
			approved = append(approved, p)
		}
	}
	if len(approved) == 0 {
		return ModelPackage{}, ErrNoApprovedModel
	}

	sort.SliceStable(approved, func(i, j int) bool {
		a, b := approved[i], approved[j]
		if !a.CreationTime.Equal(b.CreationTime) {
			return a.CreationTime.After(b.CreationTime)
		}
		if a.Version != b.Version {
			return a.Version > b.Version
		}
		return a.ARN > b.ARN
	})
	return approved[0], nil
}
