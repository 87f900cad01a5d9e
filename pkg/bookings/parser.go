package bookings

import (
	"strings"
	"time"

	"github.com/guestflow/platform/pkg/coerce"
	"github.com/guestflow/platform/pkg/common/models"
	"github.com/guestflow/platform/pkg/csvsource"
	"github.com/guestflow/platform/pkg/fieldmap"
)

const (
	DropMissingID          = "missing_id"
	DropInvalidBookingDate = "invalid_booking_date"
)

type Diagnostics struct {
	TotalRows        int            `json:"total_rows"`
	Delimiter        string         `json:"delimiter"`
	Headers          []string       `json:"headers"`
	Dropped          map[string]int `json:"dropped"`
	DuplicatesInFile int            `json:"duplicates_in_file"`
}

type Parser struct {
	aliases fieldmap.Config
}

func NewParser(aliases fieldmap.Config) *Parser {
	return &Parser{aliases: aliases}
}

// ParseCSV parses an uploaded bookings file. A blank booking date is
// acceptable; a non-blank unparseable one drops the row. Arrival and
// departure dates never drop a row, they just default to nil. Duplicate
// booking ids within the file are counted as a diagnostic and the last
// occurrence wins.
func (p *Parser) ParseCSV(raw []byte) ([]models.BookingRecord, Diagnostics) {
	doc := csvsource.Parse(raw)

	diag := Diagnostics{
		Delimiter: string(doc.Delimiter),
		Headers:   doc.Headers,
		Dropped: map[string]int{
			DropMissingID:          0,
			DropInvalidBookingDate: 0,
		},
	}

	var order []string
	byID := make(map[string]models.BookingRecord)
	seen := make(map[string]int)

	for _, row := range doc.Rows {
		diag.TotalRows++

		idRaw, _ := fieldmap.Get(row, p.aliases.Booking("booking_id")...)
		bookingID := strings.TrimSpace(idRaw)
		if bookingID == "" {
			diag.Dropped[DropMissingID]++
			continue
		}
		seen[bookingID]++

		dateRaw, _ := fieldmap.Get(row, p.aliases.Booking("booking_date")...)
		bookingDate, ok := coerce.Date(dateRaw)
		if !ok && strings.TrimSpace(dateRaw) != "" {
			diag.Dropped[DropInvalidBookingDate]++
			continue
		}
		var bookingDatePtr *time.Time
		if ok {
			d := coerce.DateOnly(bookingDate)
			bookingDatePtr = &d
		}

		record := models.BookingRecord{
			BookingID:     bookingID,
			BookingDate:   bookingDatePtr,
			ArrivalDate:   optionalDate(row, p.aliases.Booking("arrival_date")),
			DepartureDate: optionalDate(row, p.aliases.Booking("departure_date")),
			Guests:        guests(row, p.aliases.Booking("guests")),
			Amount:        amount(row, p.aliases.Booking("amount")),
			Email:         email(row, p.aliases.Booking("email")),
		}

		if _, exists := byID[bookingID]; !exists {
			order = append(order, bookingID)
		}
		byID[bookingID] = record
	}

	for _, count := range seen {
		if count > 1 {
			diag.DuplicatesInFile++
		}
	}

	records := make([]models.BookingRecord, 0, len(order))
	for _, id := range order {
		records = append(records, byID[id])
	}
	return records, diag
}

func optionalDate(row fieldmap.Row, aliases []string) *time.Time {
	raw, ok := fieldmap.Get(row, aliases...)
	if !ok {
		return nil
	}
	parsed, ok := coerce.Date(raw)
	if !ok {
		return nil
	}
	d := coerce.DateOnly(parsed)
	return &d
}

func guests(row fieldmap.Row, aliases []string) int {
	raw, _ := fieldmap.Get(row, aliases...)
	n := coerce.Int(raw, 0)
	if n < 0 {
		return 0
	}
	return n
}

func amount(row fieldmap.Row, aliases []string) float64 {
	raw, _ := fieldmap.Get(row, aliases...)
	f := coerce.Float(raw, 0)
	if f < 0 {
		return 0
	}
	return f
}

func email(row fieldmap.Row, aliases []string) string {
	raw, ok := fieldmap.Get(row, aliases...)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
