package enums

import (
	"fmt"
	"strings"
)

// EntityKind names the tables whose identifiers may arrive in legacy form.
type EntityKind string

const (
	EntityKindUsers          EntityKind = "users"
	EntityKindCategories     EntityKind = "categories"
	EntityKindInventoryItems EntityKind = "inventory_items"
)

var validEntityKinds = []EntityKind{
	EntityKindUsers,
	EntityKindCategories,
	EntityKindInventoryItems,
}

func (k EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseEntityKind(value string) (EntityKind, error) {
	normalized := EntityKind(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid entity kind %q", value)
}
