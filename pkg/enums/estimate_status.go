package enums

import "fmt"

// EstimateStatus describes the allowed values for the `status` column in estimates.
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusAccepted EstimateStatus = "accepted"
	EstimateStatusRejected EstimateStatus = "rejected"
)

var validEstimateStatuses = []EstimateStatus{
	EstimateStatusDraft,
	EstimateStatusSent,
	EstimateStatusAccepted,
	EstimateStatusRejected,
}

// IsValid reports whether the value matches the canonical estimate status enum.
func (e EstimateStatus) IsValid() bool {
	for _, candidate := range validEstimateStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEstimateStatus converts the raw string to EstimateStatus.
func ParseEstimateStatus(value string) (EstimateStatus, error) {
	for _, candidate := range validEstimateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid estimate status %q", value)
}
