package enums

import (
	"fmt"
	"strings"
)

// RequestPriority maps to the request_priority enum in Postgres.
type RequestPriority string

const (
	RequestPriorityLow      RequestPriority = "low"
	RequestPriorityMedium   RequestPriority = "medium"
	RequestPriorityHigh     RequestPriority = "high"
	RequestPriorityCritical RequestPriority = "critical"
)

var validRequestPriorities = []RequestPriority{
	RequestPriorityLow,
	RequestPriorityMedium,
	RequestPriorityHigh,
	RequestPriorityCritical,
}

func (p RequestPriority) String() string {
	return string(p)
}

// IsValid reports whether the priority is one of the canonical values.
func (p RequestPriority) IsValid() bool {
	for _, candidate := range validRequestPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRequestPriority converts a raw string into a RequestPriority.
func ParseRequestPriority(value string) (RequestPriority, error) {
	normalized := RequestPriority(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid request priority %q", value)
}
