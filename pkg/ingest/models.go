package ingest

import (
	"time"

	"gorm.io/datatypes"
)

// Lead is the durable row behind one logical lead. The unique_key column
// carries the canonical identity (email|date) independent of the
// surrogate lead_id, and is enforced at the storage layer.
type Lead struct {
	LeadID      string    `json:"lead_id" gorm:"primaryKey;column:lead_id"`
	Email       string    `json:"email" gorm:"column:email"`
	CreatedDate time.Time `json:"created_at" gorm:"column:created_at"`
	MQLYes      bool      `json:"mql_yes" gorm:"column:mql_yes"`
	SQLYes      bool      `json:"sql_yes" gorm:"column:sql_yes"`
	UTMSource   string    `json:"utm_source" gorm:"column:utm_source"`
	UTMMedium   string    `json:"utm_medium" gorm:"column:utm_medium"`
	UTMCampaign string    `json:"utm_campaign" gorm:"column:utm_campaign"`
	RawSource   string    `json:"raw_source" gorm:"column:raw_source"`
	UniqueKey   string    `json:"unique_key" gorm:"column:unique_key;uniqueIndex"`
}

func (Lead) TableName() string {
	return "leads"
}

type Booking struct {
	BookingID     string     `json:"booking_id" gorm:"primaryKey;column:booking_id"`
	BookingDate   *time.Time `json:"booking_date,omitempty" gorm:"column:booking_date"`
	ArrivalDate   *time.Time `json:"arrival_date,omitempty" gorm:"column:arrival_date"`
	DepartureDate *time.Time `json:"departure_date,omitempty" gorm:"column:departure_date"`
	Guests        int        `json:"guests" gorm:"column:guests"`
	Amount        float64    `json:"amount" gorm:"column:amount"`
	Email         string     `json:"email,omitempty" gorm:"column:email"`
	RawSource     string     `json:"raw_source" gorm:"column:raw_source"`
}

func (Booking) TableName() string {
	return "bookings"
}

type Cost struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id"`
	Name        string     `json:"name" gorm:"column:name"`
	Category    string     `json:"category" gorm:"column:category"`
	Amount      float64    `json:"amount" gorm:"column:amount"`
	Currency    string     `json:"currency" gorm:"column:currency"`
	CostDate    *time.Time `json:"cost_date,omitempty" gorm:"column:cost_date"`
	Description string     `json:"description,omitempty" gorm:"column:description"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Cost) TableName() string {
	return "costs"
}

// ImportRun is the audit trail for one import invocation; diagnostics are
// stored verbatim so operators can explain zero-record runs after the fact.
type ImportRun struct {
	ID          string            `json:"id" gorm:"primaryKey;column:id"`
	Kind        string            `json:"kind" gorm:"column:kind"`
	Source      string            `json:"source" gorm:"column:source"`
	Diagnostics datatypes.JSONMap `json:"diagnostics" gorm:"column:diagnostics"`
	Inserted    int               `json:"inserted" gorm:"column:inserted"`
	Updated     int               `json:"updated" gorm:"column:updated"`
	CreatedAt   time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
