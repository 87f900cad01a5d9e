package tabular

import (
	"fmt"
	"strings"
	"time"

	"github.com/guestflow/platform/pkg/coerce"
	"github.com/guestflow/platform/pkg/common/models"
	"github.com/guestflow/platform/pkg/fieldmap"
)

// LeadSummary describes one remote lead pull.
type LeadSummary struct {
	TotalRaw             int            `json:"total_raw"`
	AfterQualifiedFilter int            `json:"after_mql_sql_filter"`
	Deduped              int            `json:"deduped"`
	UTMSources           map[string]int `json:"utm_sources"`
}

type BookingSummary struct {
	TotalRaw    int     `json:"total_raw"`
	Deduped     int     `json:"deduped"`
	TotalAmount float64 `json:"total_amount"`
	GuestsTotal int     `json:"guests_total"`
}

// MapLeads converts raw API records into lead records. The remote source
// only feeds qualified leads into the store: rows with a true negative
// flag are dropped, and so are rows where neither MQL nor SQL is set.
// Duplicate (email, created date) pairs keep the first occurrence.
func MapLeads(records []Record) ([]models.LeadRecord, LeadSummary) {
	summary := LeadSummary{
		TotalRaw:   len(records),
		UTMSources: make(map[string]int),
	}

	seen := make(map[string]struct{})
	var out []models.LeadRecord

	for idx, rec := range records {
		fields := rec.Fields

		mqlRaw, ok := fieldmap.GetField(fields, "mql_yes")
		if !ok {
			mqlRaw, _ = fieldmap.GetField(fields, "mql")
		}
		sqlRaw, ok := fieldmap.GetField(fields, "sql_yes")
		if !ok {
			sqlRaw, _ = fieldmap.GetField(fields, "sql")
		}
		mqlYes := coerce.BoolValue(mqlRaw)
		sqlYes := coerce.BoolValue(sqlRaw)

		if negRaw, _ := fieldmap.GetField(fields, "mql_false"); coerce.BoolValue(negRaw) {
			continue
		}
		if !mqlYes && !sqlYes {
			continue
		}

		createdRaw, _ := fieldmap.GetField(fields, "created_date")
		created, ok := coerce.Date(createdRaw)
		if !ok {
			continue
		}

		emailRaw, _ := fieldmap.GetField(fields, "email")
		email := coerce.NormalizeLower(emailRaw, "")
		if email == "" {
			recordID := rec.ID
			if recordID == "" {
				recordID = fmt.Sprintf("row-%d", idx)
			}
			email = "unknown-" + recordID
		}

		summary.AfterQualifiedFilter++

		lead := models.LeadRecord{
			Email:       email,
			CreatedDate: coerce.DateOnly(created),
			UTMSource:   coerce.NormalizeLower(fieldValue(fields, "utm_source"), "unknown"),
			UTMMedium:   coerce.NormalizeLower(fieldValue(fields, "utm_medium"), "unknown"),
			UTMCampaign: coerce.NormalizeLower(fieldValue(fields, "utm_campaign"), "unknown"),
			IsMQL:       mqlYes,
			IsSQL:       sqlYes,
		}

		key := lead.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, lead)
	}

	summary.Deduped = len(out)
	for _, r := range out {
		src := r.UTMSource
		if src == "" {
			src = "unknown"
		}
		summary.UTMSources[src]++
	}

	return out, summary
}

// MapBookings converts raw API records into booking records. The remote
// source guarantees date fields, so any record with an unparseable
// booking, arrival or departure date is skipped as malformed. Duplicate
// booking ids keep the first occurrence; a missing booking_id falls back
// to the API record id.
func MapBookings(records []Record) ([]models.BookingRecord, BookingSummary) {
	summary := BookingSummary{TotalRaw: len(records)}

	seen := make(map[string]struct{})
	var out []models.BookingRecord

	for _, rec := range records {
		fields := rec.Fields

		bookingID := ""
		if idRaw, ok := fieldmap.GetField(fields, "booking_id"); ok && idRaw != nil {
			bookingID = strings.TrimSpace(fmt.Sprintf("%v", idRaw))
		}
		if bookingID == "" {
			bookingID = rec.ID
		}
		if bookingID == "" {
			continue
		}
		if _, dup := seen[bookingID]; dup {
			continue
		}
		seen[bookingID] = struct{}{}

		bookingDate, ok := parseRequiredDate(fields, "booking_date")
		if !ok {
			continue
		}
		arrivalDate, ok := parseRequiredDate(fields, "arrival_date")
		if !ok {
			continue
		}
		departureDate, ok := parseRequiredDate(fields, "departure_date")
		if !ok {
			continue
		}

		booking := models.BookingRecord{
			BookingID:     bookingID,
			BookingDate:   bookingDate,
			ArrivalDate:   arrivalDate,
			DepartureDate: departureDate,
			Guests:        coerce.Int(fieldValue(fields, "guests"), 0),
			Amount:        coerce.Float(fieldValue(fields, "amount"), 0),
			Email:         coerce.NormalizeLower(fieldValue(fields, "email"), ""),
		}
		out = append(out, booking)
	}

	summary.Deduped = len(out)
	for _, b := range out {
		summary.TotalAmount += b.Amount
		summary.GuestsTotal += b.Guests
	}

	return out, summary
}

func fieldValue(fields fieldmap.Fields, name string) interface{} {
	v, _ := fieldmap.GetField(fields, name)
	return v
}

func parseRequiredDate(fields fieldmap.Fields, name string) (*time.Time, bool) {
	raw, _ := fieldmap.GetField(fields, name)
	parsed, ok := coerce.Date(raw)
	if !ok {
		return nil, false
	}
	d := coerce.DateOnly(parsed)
	return &d, true
}
