package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatal("expected buffer of one row")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Date(2026, 2, 1, 8, 30, 0, 1234, time.FixedZone("WIB", 7*3600)), ID: uuid.New()}
	encoded := EncodeCursor(cursor)
	for _, r := range encoded {
		if r == '+' || r == '/' || r == '=' {
			t.Fatalf("cursor %q is not url safe", encoded)
		}
	}
	parsed, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) || parsed.ID != cursor.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, cursor)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("blank cursor should be nil, got %v %v", c, err)
	}
	for _, raw := range []string{"!!!", "bm8tc2VwYXJhdG9y", "eHx5"} {
		if _, err := ParseCursor(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestTrim(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []Cursor{
		{CreatedAt: base.Add(3 * time.Minute), ID: uuid.New()},
		{CreatedAt: base.Add(2 * time.Minute), ID: uuid.New()},
		{CreatedAt: base.Add(time.Minute), ID: uuid.New()},
	}
	key := func(c Cursor) Cursor { return c }

	page, next := Trim(rows, 2, key)
	if len(page) != 2 || next == nil || next.ID != rows[1].ID {
		t.Fatalf("unexpected trim result %v %v", page, next)
	}
	page, next = Trim(rows[:2], 2, key)
	if len(page) != 2 || next != nil {
		t.Fatalf("expected final page without cursor, got %v %v", page, next)
	}
}
