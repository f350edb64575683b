package database

import (
	"testing"
	"time"
)

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("")
	if err != nil {
		t.Fatalf("decode empty cursor: %v", err)
	}
	if !cursor.Zero() {
		t.Fatalf("expected zero cursor for empty input, got %+v", cursor)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ID:        "3f2a9c1e-7b4d-4e8a-9f16-0c5d2b8a47e1",
	}

	got, err := DecodeCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if got.Zero() {
		t.Fatal("round-tripped cursor must not be zero")
	}
	if got.ID != want.ID {
		t.Errorf("id = %q, want %q", got.ID, want.ID)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestDecodeCursorMalformed(t *testing.T) {
	if _, err := DecodeCursor("not a cursor"); err == nil {
		t.Fatal("expected an error for malformed cursor")
	}
}
