package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

type stubIDSource struct {
	ids   map[enums.EntityKind][]uuid.UUID
	err   error
	calls int
}

func (s *stubIDSource) ListIDs(ctx context.Context, kind enums.EntityKind) ([]uuid.UUID, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ids[kind], nil
}

func newTestReconciler(t *testing.T, source IDSource, legacy LegacyTable) *Reconciler {
	t.Helper()
	r, err := NewReconciler(source, legacy, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	return r
}

func TestResolveReturnsUUIDUnchangedWithoutLookup(t *testing.T) {
	source := &stubIDSource{}
	r := newTestReconciler(t, source, nil)

	want := uuid.New()
	got, err := r.Resolve(context.Background(), want.String(), enums.EntityKindCategories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s got %s", want, got)
	}
	if source.calls != 0 {
		t.Fatalf("uuid input should not hit the store")
	}
}

func TestResolveRejectsMalformedUUIDShape(t *testing.T) {
	r := newTestReconciler(t, &stubIDSource{}, nil)
	_, err := r.Resolve(context.Background(), "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz", enums.EntityKindUsers)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveUsesLegacyTable(t *testing.T) {
	source := &stubIDSource{}
	r := newTestReconciler(t, source, nil)

	got, err := r.Resolve(context.Background(), "1", enums.EntityKindUsers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SeedAdminID {
		t.Fatalf("expected seed admin, got %s", got)
	}
	if source.calls != 0 {
		t.Fatalf("legacy hit should not query the store")
	}
}

func TestResolveFallsBackToLeadingDigits(t *testing.T) {
	miss := uuid.MustParse("9a000000-0000-4000-8000-000000000000")
	hit := uuid.MustParse("42b10000-0000-4000-8000-000000000000")
	source := &stubIDSource{ids: map[enums.EntityKind][]uuid.UUID{
		enums.EntityKindCategories: {miss, hit},
	}}
	r := newTestReconciler(t, source, nil)

	got, err := r.Resolve(context.Background(), "42", enums.EntityKindCategories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != hit {
		t.Fatalf("expected %s got %s", hit, got)
	}
}

func TestResolveNotFoundAfterAllFallbacks(t *testing.T) {
	source := &stubIDSource{ids: map[enums.EntityKind][]uuid.UUID{
		enums.EntityKindInventoryItems: {uuid.MustParse("11111111-0000-4000-8000-000000000000")},
	}}
	r := newTestReconciler(t, source, nil)

	_, err := r.Resolve(context.Background(), "7", enums.EntityKindInventoryItems)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = r.Resolve(context.Background(), "abc", enums.EntityKindInventoryItems)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for non numeric input, got %v", err)
	}
}

func TestResolveEmptyInputIsValidationError(t *testing.T) {
	r := newTestReconciler(t, &stubIDSource{}, nil)
	_, err := r.Resolve(context.Background(), "  ", enums.EntityKindUsers)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveWrapsStoreFailure(t *testing.T) {
	r := newTestReconciler(t, &stubIDSource{err: errors.New("connection reset")}, nil)
	_, err := r.Resolve(context.Background(), "5", enums.EntityKindUsers)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestResolveAnyAcceptsJSONShapes(t *testing.T) {
	r := newTestReconciler(t, &stubIDSource{}, nil)
	cases := []any{float64(1), json.Number("1"), 1, "1"}
	for _, raw := range cases {
		got, err := r.ResolveAny(context.Background(), raw, enums.EntityKindUsers)
		if err != nil {
			t.Fatalf("raw %#v: unexpected error %v", raw, err)
		}
		if got != SeedAdminID {
			t.Fatalf("raw %#v: expected seed admin got %s", raw, got)
		}
	}

	if _, err := r.ResolveAny(context.Background(), 1.5, enums.EntityKindUsers); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("fractional ids should fail validation, got %v", err)
	}
	if _, err := r.ResolveAny(context.Background(), []string{"x"}, enums.EntityKindUsers); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unsupported types should fail validation, got %v", err)
	}
}

func TestResolveOptional(t *testing.T) {
	r := newTestReconciler(t, &stubIDSource{}, nil)

	got, err := r.ResolveOptional(context.Background(), nil, enums.EntityKindInventoryItems)
	if err != nil || got != nil {
		t.Fatalf("nil input should resolve to nil, got %v err=%v", got, err)
	}
	got, err = r.ResolveOptional(context.Background(), "", enums.EntityKindInventoryItems)
	if err != nil || got != nil {
		t.Fatalf("empty input should resolve to nil, got %v err=%v", got, err)
	}

	id := uuid.New()
	got, err = r.ResolveOptional(context.Background(), id.String(), enums.EntityKindInventoryItems)
	if err != nil || got == nil || *got != id {
		t.Fatalf("expected %s, got %v err=%v", id, got, err)
	}
}

func TestParseLegacyMap(t *testing.T) {
	target := uuid.New()
	table, err := ParseLegacyMap("categories:3=" + target.String() + ", users:2=" + target.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := table.Lookup(enums.EntityKindCategories, "3"); !ok || id != target {
		t.Fatalf("expected category mapping, got %s ok=%v", id, ok)
	}
	if id, ok := table.Lookup(enums.EntityKindUsers, "1"); !ok || id != SeedAdminID {
		t.Fatalf("default mapping should survive merge")
	}

	for _, bad := range []string{"users1=x", "users:1", "orders:1=" + target.String(), "users:a=" + target.String(), "users:1=nope"} {
		if _, err := ParseLegacyMap(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
