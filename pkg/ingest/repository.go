package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/common/models"
	"gorm.io/gorm"
)

// Stats reports upsert outcomes for one batch. Failed rows were logged
// and skipped; they never abort the rest of the batch.
type Stats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed,omitempty"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate bootstraps the schema idempotently: tables are created when
// absent and newly introduced nullable columns are added to existing
// tables without touching data.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Lead{}, &Booking{}, &Cost{}, &ImportRun{})
}

// UpsertLeads persists deduplicated leads keyed by unique_key
// (email|created date). An existing row gets its mutable fields updated
// in place; a new one is inserted under a fresh surrogate id. Each row is
// its own statement so an interrupted batch leaves prior rows durable.
func (r *Repository) UpsertLeads(ctx context.Context, records []models.LeadRecord, rawSource string) Stats {
	var stats Stats
	for _, rec := range records {
		if rec.CreatedDate.IsZero() {
			continue
		}
		key := rec.Key()

		var existing Lead
		err := r.db.WithContext(ctx).Where("unique_key = ?", key).First(&existing).Error
		switch {
		case err == nil:
			updateErr := r.db.WithContext(ctx).Model(&Lead{}).
				Where("unique_key = ?", key).
				Updates(map[string]interface{}{
					"email":        rec.Email,
					"mql_yes":      rec.IsMQL,
					"sql_yes":      rec.IsSQL,
					"utm_source":   rec.UTMSource,
					"utm_medium":   rec.UTMMedium,
					"utm_campaign": rec.UTMCampaign,
					"raw_source":   rawSource,
				}).Error
			if updateErr != nil {
				stats.Failed++
				logger.Log.WithError(updateErr).WithField("unique_key", key).Error("lead update failed, skipping row")
				continue
			}
			stats.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			lead := Lead{
				LeadID:      uuid.New().String(),
				Email:       rec.Email,
				CreatedDate: rec.CreatedDate,
				MQLYes:      rec.IsMQL,
				SQLYes:      rec.IsSQL,
				UTMSource:   rec.UTMSource,
				UTMMedium:   rec.UTMMedium,
				UTMCampaign: rec.UTMCampaign,
				RawSource:   rawSource,
				UniqueKey:   key,
			}
			if createErr := r.db.WithContext(ctx).Create(&lead).Error; createErr != nil {
				stats.Failed++
				logger.Log.WithError(createErr).WithField("unique_key", key).Error("lead insert failed, skipping row")
				continue
			}
			stats.Inserted++
		default:
			stats.Failed++
			logger.Log.WithError(err).WithField("unique_key", key).Error("lead lookup failed, skipping row")
		}
	}
	return stats
}

// UpsertBookings persists bookings keyed directly by booking_id.
func (r *Repository) UpsertBookings(ctx context.Context, records []models.BookingRecord, rawSource string) Stats {
	var stats Stats
	for _, rec := range records {
		if rec.BookingID == "" {
			continue
		}

		var existing Booking
		err := r.db.WithContext(ctx).Where("booking_id = ?", rec.BookingID).First(&existing).Error
		switch {
		case err == nil:
			updateErr := r.db.WithContext(ctx).Model(&Booking{}).
				Where("booking_id = ?", rec.BookingID).
				Updates(map[string]interface{}{
					"booking_date":   rec.BookingDate,
					"arrival_date":   rec.ArrivalDate,
					"departure_date": rec.DepartureDate,
					"guests":         rec.Guests,
					"amount":         rec.Amount,
					"email":          rec.Email,
					"raw_source":     rawSource,
				}).Error
			if updateErr != nil {
				stats.Failed++
				logger.Log.WithError(updateErr).WithField("booking_id", rec.BookingID).Error("booking update failed, skipping row")
				continue
			}
			stats.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			booking := Booking{
				BookingID:     rec.BookingID,
				BookingDate:   rec.BookingDate,
				ArrivalDate:   rec.ArrivalDate,
				DepartureDate: rec.DepartureDate,
				Guests:        rec.Guests,
				Amount:        rec.Amount,
				Email:         rec.Email,
				RawSource:     rawSource,
			}
			if createErr := r.db.WithContext(ctx).Create(&booking).Error; createErr != nil {
				stats.Failed++
				logger.Log.WithError(createErr).WithField("booking_id", rec.BookingID).Error("booking insert failed, skipping row")
				continue
			}
			stats.Inserted++
		default:
			stats.Failed++
			logger.Log.WithError(err).WithField("booking_id", rec.BookingID).Error("booking lookup failed, skipping row")
		}
	}
	return stats
}

// RecordRun appends one audit row for an import invocation.
func (r *Repository) RecordRun(ctx context.Context, run *ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(run).Error
}
