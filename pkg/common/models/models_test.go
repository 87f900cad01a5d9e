package models

import (
	"testing"
	"time"
)

func TestLeadRecordKey(t *testing.T) {
	r := LeadRecord{
		Email:       "a@x.com",
		CreatedDate: time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC),
	}
	if got := r.Key(); got != "a@x.com|2024-01-15" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLeadRecordKeyIgnoresTimeOfDay(t *testing.T) {
	morning := LeadRecord{Email: "a@x.com", CreatedDate: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	evening := LeadRecord{Email: "a@x.com", CreatedDate: time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)}
	if morning.Key() != evening.Key() {
		t.Fatalf("keys differ: %q vs %q", morning.Key(), evening.Key())
	}
}
