package models

import "time"

// Parsed source records. These live only for the duration of one import
// batch; the ingest repository owns all durable state.

type LeadRecord struct {
	Email       string    `json:"email"`
	CreatedDate time.Time `json:"created_date"`
	UTMSource   string    `json:"utm_source"`
	UTMMedium   string    `json:"utm_medium"`
	UTMCampaign string    `json:"utm_campaign"`
	IsMQL       bool      `json:"is_mql"`
	IsSQL       bool      `json:"is_sql"`
}

// Key is the canonical lead identity: email plus date-only created date.
func (l LeadRecord) Key() string {
	return l.Email + "|" + l.CreatedDate.Format("2006-01-02")
}

type BookingRecord struct {
	BookingID     string     `json:"booking_id"`
	BookingDate   *time.Time `json:"booking_date,omitempty"`
	ArrivalDate   *time.Time `json:"arrival_date,omitempty"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`
	Guests        int        `json:"guests"`
	Amount        float64    `json:"amount"`
	Email         string     `json:"email,omitempty"`
}

type CostRecord struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	CostDate    *time.Time `json:"cost_date,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // import.completed, merge.completed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
