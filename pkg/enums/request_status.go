package enums

import (
	"fmt"
	"strings"
)

// RequestStatus maps to the request_status enum in Postgres.
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "draft"
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusFulfilled RequestStatus = "fulfilled"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusDraft,
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusFulfilled,
}

func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is one of the canonical values.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusFulfilled
}

// IsEditable reports whether descriptive fields may still change.
func (s RequestStatus) IsEditable() bool {
	return s == RequestStatusDraft || s == RequestStatusPending
}

// ParseRequestStatus converts a raw string into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	normalized := RequestStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
