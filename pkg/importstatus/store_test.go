package importstatus

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNilClientIsNoOp(t *testing.T) {
	s := NewStore(nil, time.Hour)
	ctx := context.Background()

	s.SaveLastRun(ctx, "leads_csv", map[string]int{"inserted": 2})

	if _, err := s.LastRun(ctx, "leads_csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	ctx := context.Background()

	s.SaveLastRun(ctx, "leads_csv", nil)
	if _, err := s.LastRun(ctx, "leads_csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKeyFormat(t *testing.T) {
	if got := key("bookings_api"); got != "import:last:bookings_api" {
		t.Fatalf("unexpected key %q", got)
	}
}
