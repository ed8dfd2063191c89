package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// Reconciler maps identifiers of unknown provenance to canonical UUIDs.
// It never writes.
type Reconciler struct {
	source IDSource
	legacy LegacyTable
	logg   *logger.Logger
}

// NewReconciler wires the store lookup and legacy table.
func NewReconciler(source IDSource, legacy LegacyTable, logg *logger.Logger) (*Reconciler, error) {
	if source == nil {
		return nil, fmt.Errorf("id source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if legacy == nil {
		legacy = DefaultLegacyTable()
	}
	return &Reconciler{source: source, legacy: legacy, logg: logg}, nil
}

// Resolve follows three steps: UUID-shaped input is returned unchanged, then
// the legacy table is consulted, then numeric input is matched against the
// leading digits of stored ids.
func (r *Reconciler) Resolve(ctx context.Context, raw string, kind enums.EntityKind) (uuid.UUID, error) {
	if !kind.IsValid() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported entity kind %q", kind))
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s id is required", singular(kind)))
	}

	if looksLikeUUID(value) {
		id, err := uuid.Parse(value)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s id", singular(kind)))
		}
		return id, nil
	}

	if id, ok := r.legacy.Lookup(kind, value); ok {
		return id, nil
	}

	if !isDigits(value) {
		return uuid.Nil, notFound(kind, value)
	}

	ids, err := r.source.ListIDs(ctx, kind)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store error")
	}

	want, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return uuid.Nil, notFound(kind, value)
	}
	for _, id := range ids {
		if leadingDigitsMatch(id, value, want) {
			warnCtx := r.logg.WithFields(ctx, map[string]any{
				"entity_kind": string(kind),
				"legacy_id":   value,
				"resolved_id": id.String(),
			})
			r.logg.Warn(warnCtx, "legacy id resolved by digit heuristic")
			return id, nil
		}
	}

	return uuid.Nil, notFound(kind, value)
}

// ResolveAny accepts the shapes JSON decoding produces for an id field.
func (r *Reconciler) ResolveAny(ctx context.Context, raw any, kind enums.EntityKind) (uuid.UUID, error) {
	value, err := rawString(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s id", singular(kind)))
	}
	return r.Resolve(ctx, value, kind)
}

// ResolveOptional treats nil and empty input as absent.
func (r *Reconciler) ResolveOptional(ctx context.Context, raw any, kind enums.EntityKind) (*uuid.UUID, error) {
	value, err := rawString(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s id", singular(kind)))
	}
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := r.Resolve(ctx, value, kind)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func rawString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "", nil
		}
		return *v, nil
	case uuid.UUID:
		return v.String(), nil
	case *uuid.UUID:
		if v == nil {
			return "", nil
		}
		return v.String(), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return "", fmt.Errorf("id %v is not a whole number", v)
		}
		return strconv.FormatFloat(v, 'f', 0, 64), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", raw)
	}
}

func looksLikeUUID(value string) bool {
	return strings.Contains(value, "-") && len(value) > 30
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// leadingDigitsMatch strips non-digits from the id and compares as many
// leading digits as the legacy value has.
func leadingDigitsMatch(id uuid.UUID, legacy string, want uint64) bool {
	var digits strings.Builder
	for _, ch := range id.String() {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	all := digits.String()
	if len(all) < len(legacy) {
		return false
	}
	got, err := strconv.ParseUint(all[:len(legacy)], 10, 64)
	if err != nil {
		return false
	}
	return got == want
}

func notFound(kind enums.EntityKind, value string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", singular(kind), value)).
		WithDetails(map[string]any{"kind": string(kind), "id": value})
}

func singular(kind enums.EntityKind) string {
	switch kind {
	case enums.EntityKindUsers:
		return "user"
	case enums.EntityKindCategories:
		return "category"
	case enums.EntityKindInventoryItems:
		return "inventory item"
	default:
		return string(kind)
	}
}
