package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guestflow/platform/pkg/common/database"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/common/models"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo, db
}

func leadRecord(email, day string, mql, sql bool) models.LeadRecord {
	d, _ := time.Parse("2006-01-02", day)
	return models.LeadRecord{Email: email, CreatedDate: d, IsMQL: mql, IsSQL: sql, UTMSource: "google"}
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo, _ := testRepo(t)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUpsertLeadsInsertThenUpdate(t *testing.T) {
	repo, db := testRepo(t)
	ctx := context.Background()

	stats := repo.UpsertLeads(ctx, []models.LeadRecord{leadRecord("a@x.com", "2024-01-01", true, false)}, "upload.csv")
	if stats.Inserted != 1 || stats.Updated != 0 || stats.Failed != 0 {
		t.Fatalf("first pass: %+v", stats)
	}

	// Same canonical identity, new flags: must update in place.
	stats = repo.UpsertLeads(ctx, []models.LeadRecord{leadRecord("a@x.com", "2024-01-01", false, true)}, "upload2.csv")
	if stats.Inserted != 0 || stats.Updated != 1 {
		t.Fatalf("second pass: %+v", stats)
	}

	var count int64
	if err := db.Model(&Lead{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}

	var row Lead
	if err := db.Where("unique_key = ?", "a@x.com|2024-01-01").First(&row).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.MQLYes || !row.SQLYes {
		t.Fatalf("expected updated flags, got mql=%v sql=%v", row.MQLYes, row.SQLYes)
	}
	if row.RawSource != "upload2.csv" {
		t.Fatalf("expected raw_source refreshed, got %q", row.RawSource)
	}
	if row.LeadID == "" {
		t.Fatal("expected surrogate id")
	}
}

func TestUpsertLeadsReimportReportsOnlyUpdates(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	batch := []models.LeadRecord{
		leadRecord("a@x.com", "2024-01-01", true, false),
		leadRecord("b@x.com", "2024-01-02", false, true),
	}
	stats := repo.UpsertLeads(ctx, batch, "upload.csv")
	if stats.Inserted != 2 {
		t.Fatalf("first pass: %+v", stats)
	}

	stats = repo.UpsertLeads(ctx, batch, "upload.csv")
	if stats.Inserted != 0 || stats.Updated != 2 || stats.Failed != 0 {
		t.Fatalf("reimport must be idempotent: %+v", stats)
	}
}

func TestUpsertLeadsSameEmailDifferentDaysAreDistinct(t *testing.T) {
	repo, db := testRepo(t)
	ctx := context.Background()

	stats := repo.UpsertLeads(ctx, []models.LeadRecord{
		leadRecord("a@x.com", "2024-01-01", true, false),
		leadRecord("a@x.com", "2024-01-02", true, false),
	}, "upload.csv")
	if stats.Inserted != 2 {
		t.Fatalf("expected 2 inserts: %+v", stats)
	}

	var count int64
	db.Model(&Lead{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}

func TestUpsertLeadsSkipsZeroDate(t *testing.T) {
	repo, _ := testRepo(t)
	stats := repo.UpsertLeads(context.Background(), []models.LeadRecord{{Email: "a@x.com"}}, "upload.csv")
	if stats.Inserted != 0 || stats.Updated != 0 {
		t.Fatalf("expected zero-date record skipped: %+v", stats)
	}
}

func TestUpsertBookingsSequence(t *testing.T) {
	repo, db := testRepo(t)
	ctx := context.Background()

	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	first := models.BookingRecord{BookingID: "BK-001", BookingDate: &day, Amount: 500, Guests: 2}
	second := models.BookingRecord{BookingID: "BK-001", BookingDate: &day, Amount: 600, Guests: 2}

	stats := repo.UpsertBookings(ctx, []models.BookingRecord{first}, "upload.csv")
	if stats.Inserted != 1 || stats.Updated != 0 {
		t.Fatalf("first pass: %+v", stats)
	}
	stats = repo.UpsertBookings(ctx, []models.BookingRecord{second}, "upload.csv")
	if stats.Inserted != 0 || stats.Updated != 1 {
		t.Fatalf("second pass: %+v", stats)
	}

	var row Booking
	if err := db.Where("booking_id = ?", "BK-001").First(&row).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.Amount != 600 {
		t.Fatalf("expected amount 600 after update, got %v", row.Amount)
	}

	var count int64
	db.Model(&Booking{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestUpsertBookingsNilDatesAllowed(t *testing.T) {
	repo, db := testRepo(t)
	stats := repo.UpsertBookings(context.Background(), []models.BookingRecord{{BookingID: "BK-002"}}, "upload.csv")
	if stats.Inserted != 1 {
		t.Fatalf("expected insert: %+v", stats)
	}
	var row Booking
	if err := db.Where("booking_id = ?", "BK-002").First(&row).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.BookingDate != nil || row.ArrivalDate != nil || row.DepartureDate != nil {
		t.Fatalf("expected nil dates, got %+v", row)
	}
}

func TestRecordRunFillsDefaults(t *testing.T) {
	repo, db := testRepo(t)
	run := &ImportRun{Kind: "leads_csv", Source: "upload.csv", Inserted: 2, Updated: 1}
	if err := repo.RecordRun(context.Background(), run); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp filled, got %+v", run)
	}

	var count int64
	db.Model(&ImportRun{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 audit row, got %d", count)
	}
}
