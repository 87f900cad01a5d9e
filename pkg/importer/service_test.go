package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guestflow/platform/pkg/bookings"
	"github.com/guestflow/platform/pkg/common/database"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/fieldmap"
	"github.com/guestflow/platform/pkg/importstatus"
	"github.com/guestflow/platform/pkg/ingest"
	"github.com/guestflow/platform/pkg/leads"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "importer.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := ingest.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc := NewService(
		leads.NewParser(fieldmap.Default()),
		bookings.NewParser(fieldmap.Default()),
		repo,
		nil,
		nil,
		importstatus.NewStore(nil, time.Hour),
		"Main",
		"Bookings",
	)
	return svc, db
}

func TestImportLeadsCSVEndToEnd(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	csv := []byte("email,created_at,mql_yes,sql_yes\n" +
		"a@x.com,2024-01-01,yes,no\n" +
		"A@X.com,2024-01-01,no,yes\n" +
		"b@x.com,2024-01-02,yes,yes\n")

	result, err := svc.ImportLeadsCSV(ctx, csv, "csv:upload")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Kind != KindLeadsCSV {
		t.Fatalf("unexpected kind %q", result.Kind)
	}
	if result.Stats.Inserted != 2 || result.Stats.Updated != 0 {
		t.Fatalf("first import stats: %+v", result.Stats)
	}

	// Re-importing the same file changes nothing but the update counters.
	result, err = svc.ImportLeadsCSV(ctx, csv, "csv:upload")
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if result.Stats.Inserted != 0 || result.Stats.Updated != 2 {
		t.Fatalf("reimport stats: %+v", result.Stats)
	}

	var count int64
	db.Model(&ingest.Lead{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 lead rows, got %d", count)
	}

	var row ingest.Lead
	if err := db.Where("unique_key = ?", "a@x.com|2024-01-01").First(&row).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.MQLYes || !row.SQLYes {
		t.Fatalf("expected the later same-day row to win, got %+v", row)
	}

	var runs int64
	db.Model(&ingest.ImportRun{}).Count(&runs)
	if runs != 2 {
		t.Fatalf("expected 2 audit rows, got %d", runs)
	}
}

func TestImportBookingsCSVEndToEnd(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	csv := []byte("booking_id,booking_date,amount\n" +
		"BK-001,2024-02-01,500\n" +
		"BK-001,2024-02-01,600\n")

	result, err := svc.ImportBookingsCSV(ctx, csv, "csv:upload")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	// In-file duplicates collapse before the upsert, so one insert.
	if result.Stats.Inserted != 1 || result.Stats.Updated != 0 {
		t.Fatalf("stats: %+v", result.Stats)
	}

	var row ingest.Booking
	if err := db.Where("booking_id = ?", "BK-001").First(&row).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.Amount != 600 {
		t.Fatalf("expected last in-file occurrence persisted, got %v", row.Amount)
	}
}

func TestImportLeadsCSVMissingHeadersStillAudited(t *testing.T) {
	svc, db := testService(t)

	result, err := svc.ImportLeadsCSV(context.Background(), []byte("name,phone\nalice,123\n"), "csv:upload")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Stats.Inserted != 0 || result.Stats.Updated != 0 {
		t.Fatalf("stats: %+v", result.Stats)
	}
	diag, ok := result.Diagnostics.(leads.Diagnostics)
	if !ok {
		t.Fatalf("unexpected diagnostics type %T", result.Diagnostics)
	}
	if diag.Dropped[leads.DropHeaderNotFound] != 1 {
		t.Fatalf("expected the row under header_not_found: %+v", diag)
	}

	var runs int64
	db.Model(&ingest.ImportRun{}).Count(&runs)
	if runs != 1 {
		t.Fatalf("expected audit row even for unusable file, got %d", runs)
	}
}

func TestImportAPIWithoutRemote(t *testing.T) {
	svc, _ := testService(t)

	if _, err := svc.ImportLeadsAPI(context.Background()); err != ErrRemoteNotConfigured {
		t.Fatalf("expected ErrRemoteNotConfigured, got %v", err)
	}
	if _, err := svc.ImportBookingsAPI(context.Background()); err != ErrRemoteNotConfigured {
		t.Fatalf("expected ErrRemoteNotConfigured, got %v", err)
	}
}

func TestLastRunWithoutCache(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.LastRun(context.Background(), KindLeadsCSV); err != importstatus.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
