package merge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guestflow/platform/pkg/coerce"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/ingest"
	"gorm.io/gorm"
)

const legacySource = "merge:legacy"

// Result reports rows copied per table in one merge run. A re-run against
// an unchanged legacy database reports all zeros.
type Result struct {
	Leads    int `json:"leads"`
	Bookings int `json:"bookings"`
	Costs    int `json:"costs"`
}

// Merger copies rows that exist in a legacy database but are missing from
// the canonical one. It never updates or deletes; existence is decided by
// the same canonical keys the ingest pipeline uses.
type Merger struct {
	src *gorm.DB
	dst *gorm.DB
}

func New(src, dst *gorm.DB) *Merger {
	return &Merger{src: src, dst: dst}
}

// Run merges all three tables and returns per-table inserted counts.
func (m *Merger) Run(ctx context.Context) (Result, error) {
	var result Result
	var err error

	if result.Leads, err = m.MergeLeads(ctx); err != nil {
		return result, fmt.Errorf("merging leads: %w", err)
	}
	if result.Bookings, err = m.MergeBookings(ctx); err != nil {
		return result, fmt.Errorf("merging bookings: %w", err)
	}
	if result.Costs, err = m.MergeCosts(ctx); err != nil {
		return result, fmt.Errorf("merging costs: %w", err)
	}

	return result, nil
}

// MergeLeads copies legacy leads missing from the canonical store, keyed
// by unique_key. Legacy rows without one get it recomputed from email and
// created date; rows where that is impossible are skipped.
func (m *Merger) MergeLeads(ctx context.Context) (int, error) {
	if !m.src.Migrator().HasTable("leads") {
		return 0, nil
	}
	if err := m.dst.WithContext(ctx).AutoMigrate(&ingest.Lead{}); err != nil {
		return 0, err
	}

	rows, err := m.readAll(ctx, "leads")
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(rowString(row, "email")))
		created, createdOK := coerce.Date(row["created_at"])

		uniqueKey := rowString(row, "unique_key")
		if uniqueKey == "" {
			if !createdOK {
				// Cannot dedupe without a created date.
				continue
			}
			uniqueKey = email + "|" + coerce.DateOnly(created).Format("2006-01-02")
		}

		var count int64
		if err := m.dst.WithContext(ctx).Model(&ingest.Lead{}).Where("unique_key = ?", uniqueKey).Count(&count).Error; err != nil {
			return inserted, err
		}
		if count > 0 {
			continue
		}

		leadID := rowString(row, "lead_id")
		if leadID == "" {
			leadID = uuid.New().String()
		}
		rawSource := rowString(row, "raw_source")
		if rawSource == "" {
			rawSource = legacySource
		}

		lead := ingest.Lead{
			LeadID:      leadID,
			Email:       email,
			MQLYes:      coerce.BoolValue(row["mql_yes"]),
			SQLYes:      coerce.BoolValue(row["sql_yes"]),
			UTMSource:   rowString(row, "utm_source"),
			UTMMedium:   rowString(row, "utm_medium"),
			UTMCampaign: rowString(row, "utm_campaign"),
			RawSource:   rawSource,
			UniqueKey:   uniqueKey,
		}
		if createdOK {
			lead.CreatedDate = coerce.DateOnly(created)
		}

		if err := m.dst.WithContext(ctx).Create(&lead).Error; err != nil {
			logger.Log.WithError(err).WithField("unique_key", uniqueKey).Error("lead merge insert failed, skipping row")
			continue
		}
		inserted++
	}

	return inserted, nil
}

// MergeBookings copies legacy bookings missing from the canonical store,
// keyed by booking_id.
func (m *Merger) MergeBookings(ctx context.Context) (int, error) {
	if !m.src.Migrator().HasTable("bookings") {
		return 0, nil
	}
	if err := m.dst.WithContext(ctx).AutoMigrate(&ingest.Booking{}); err != nil {
		return 0, err
	}

	rows, err := m.readAll(ctx, "bookings")
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		bookingID := strings.TrimSpace(rowString(row, "booking_id"))
		if bookingID == "" {
			continue
		}

		var count int64
		if err := m.dst.WithContext(ctx).Model(&ingest.Booking{}).Where("booking_id = ?", bookingID).Count(&count).Error; err != nil {
			return inserted, err
		}
		if count > 0 {
			continue
		}

		rawSource := rowString(row, "raw_source")
		if rawSource == "" {
			rawSource = legacySource
		}

		booking := ingest.Booking{
			BookingID:     bookingID,
			BookingDate:   rowDate(row, "booking_date"),
			ArrivalDate:   rowDate(row, "arrival_date"),
			DepartureDate: rowDate(row, "departure_date"),
			Guests:        coerce.Int(row["guests"], 0),
			Amount:        coerce.Float(row["amount"], 0),
			Email:         strings.ToLower(strings.TrimSpace(rowString(row, "email"))),
			RawSource:     rawSource,
		}

		if err := m.dst.WithContext(ctx).Create(&booking).Error; err != nil {
			logger.Log.WithError(err).WithField("booking_id", bookingID).Error("booking merge insert failed, skipping row")
			continue
		}
		inserted++
	}

	return inserted, nil
}

// MergeCosts copies legacy costs missing from the canonical store. Costs
// have no stable cross-database id, so existence is checked on the
// composite (name, amount, currency, cost_date) with NULL-safe equality,
// and a fresh id is generated when the legacy row lacks one.
func (m *Merger) MergeCosts(ctx context.Context) (int, error) {
	if !m.src.Migrator().HasTable("costs") {
		return 0, nil
	}
	if err := m.dst.WithContext(ctx).AutoMigrate(&ingest.Cost{}); err != nil {
		return 0, err
	}

	rows, err := m.readAll(ctx, "costs")
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	inserted := 0
	for _, row := range rows {
		name := rowString(row, "name")
		amountRaw, hasAmount := row["amount"]
		if name == "" || !hasAmount || amountRaw == nil {
			// Insufficient identity to dedupe.
			continue
		}
		amount := coerce.Float(amountRaw, 0)

		currency := rowString(row, "currency")
		costDate := rowDate(row, "cost_date")

		query := m.dst.WithContext(ctx).Model(&ingest.Cost{}).Where("name = ? AND amount = ?", name, amount)
		if currency == "" {
			query = query.Where("currency IS NULL OR currency = ''")
		} else {
			query = query.Where("currency = ?", currency)
		}
		if costDate == nil {
			query = query.Where("cost_date IS NULL")
		} else {
			query = query.Where("cost_date = ?", *costDate)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return inserted, err
		}
		if count > 0 {
			continue
		}

		id := rowString(row, "id")
		if id == "" {
			id = uuid.New().String()
		}

		cost := ingest.Cost{
			ID:          id,
			Name:        name,
			Category:    rowString(row, "category"),
			Amount:      amount,
			Currency:    currency,
			CostDate:    costDate,
			Description: rowString(row, "description"),
			CreatedAt:   rowTime(row, "created_at", now),
			UpdatedAt:   rowTime(row, "updated_at", now),
		}

		if err := m.dst.WithContext(ctx).Create(&cost).Error; err != nil {
			logger.Log.WithError(err).WithField("name", name).Error("cost merge insert failed, skipping row")
			continue
		}
		inserted++
	}

	return inserted, nil
}

func (m *Merger) readAll(ctx context.Context, table string) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	if err := m.src.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading legacy %s: %w", table, err)
	}
	return rows, nil
}

func rowString(row map[string]interface{}, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func rowDate(row map[string]interface{}, key string) *time.Time {
	parsed, ok := coerce.Date(row[key])
	if !ok {
		return nil
	}
	d := coerce.DateOnly(parsed)
	return &d
}

func rowTime(row map[string]interface{}, key string, fallback time.Time) time.Time {
	parsed, ok := coerce.Date(row[key])
	if !ok {
		return fallback
	}
	return parsed
}
