package identity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
)

// SeedAdminID is the canonical id historically addressed as legacy user 1.
var SeedAdminID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

// LegacyTable maps legacy integer ids to canonical ids per entity kind.
type LegacyTable map[enums.EntityKind]map[string]uuid.UUID

// DefaultLegacyTable returns the built-in mappings present on every install.
func DefaultLegacyTable() LegacyTable {
	return LegacyTable{
		enums.EntityKindUsers: {"1": SeedAdminID},
	}
}

// Lookup returns the mapped id, if any.
func (t LegacyTable) Lookup(kind enums.EntityKind, legacy string) (uuid.UUID, bool) {
	byKind, ok := t[kind]
	if !ok {
		return uuid.Nil, false
	}
	id, ok := byKind[legacy]
	return id, ok
}

// ParseLegacyMap merges entries of the form "kind:legacy=uuid" separated by
// commas on top of the default table.
func ParseLegacyMap(raw string) (LegacyTable, error) {
	table := DefaultLegacyTable()
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		kindPart, rest, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("legacy map entry %q missing kind", entry)
		}
		legacy, target, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("legacy map entry %q missing '='", entry)
		}

		kind, err := enums.ParseEntityKind(kindPart)
		if err != nil {
			return nil, fmt.Errorf("legacy map entry %q: %w", entry, err)
		}
		legacy = strings.TrimSpace(legacy)
		if !isDigits(legacy) {
			return nil, fmt.Errorf("legacy map entry %q: legacy id must be numeric", entry)
		}
		id, err := uuid.Parse(strings.TrimSpace(target))
		if err != nil {
			return nil, fmt.Errorf("legacy map entry %q: %w", entry, err)
		}

		if table[kind] == nil {
			table[kind] = map[string]uuid.UUID{}
		}
		table[kind][legacy] = id
	}
	return table, nil
}
