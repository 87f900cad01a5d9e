package leads

import (
	"strings"

	"github.com/guestflow/platform/pkg/coerce"
	"github.com/guestflow/platform/pkg/common/models"
	"github.com/guestflow/platform/pkg/csvsource"
	"github.com/guestflow/platform/pkg/fieldmap"
)

// Drop reasons reported per rejected row.
const (
	DropMissingEmail   = "missing_email"
	DropInvalidDate    = "invalid_date"
	DropHeaderNotFound = "header_not_found"
)

// Diagnostics summarises one lead import, produced even when zero rows
// are usable so an empty file, a wrong schema and an all-invalid file
// stay distinguishable.
type Diagnostics struct {
	TotalRows          int            `json:"total_rows"`
	Delimiter          string         `json:"delimiter"`
	Headers            []string       `json:"headers"`
	Dropped            map[string]int `json:"dropped"`
	MissingHeaders     []string       `json:"missing_headers,omitempty"`
	GroupsAfterDedupe  int            `json:"groups_after_dedupe"`
	MQLTrueAfterDedupe int            `json:"mql_true_after_dedupe"`
	SQLTrueAfterDedupe int            `json:"sql_true_after_dedupe"`
}

type Parser struct {
	aliases fieldmap.Config
}

func NewParser(aliases fieldmap.Config) *Parser {
	return &Parser{aliases: aliases}
}

// ParseCSV parses an uploaded leads file into deduplicated records.
// Failures are row-local except the missing-critical-header case, which
// aborts the file and reports every row under header_not_found.
func (p *Parser) ParseCSV(raw []byte) ([]models.LeadRecord, Diagnostics) {
	doc := csvsource.Parse(raw)

	diag := Diagnostics{
		Delimiter: string(doc.Delimiter),
		Headers:   doc.Headers,
		Dropped: map[string]int{
			DropMissingEmail:   0,
			DropInvalidDate:    0,
			DropHeaderNotFound: 0,
		},
	}

	var missing []string
	if !fieldmap.HasAny(doc.Headers, p.aliases.Lead("email")) {
		missing = append(missing, "email")
	}
	if !fieldmap.HasAny(doc.Headers, p.aliases.Lead("created_at")) {
		missing = append(missing, "created_at")
	}
	if len(missing) > 0 {
		diag.TotalRows = len(doc.Rows)
		diag.Dropped[DropHeaderNotFound] = len(doc.Rows)
		diag.MissingHeaders = missing
		return nil, diag
	}

	dedupe := newDeduper()
	for i, row := range doc.Rows {
		rowIndex := i + 1
		diag.TotalRows++

		emailRaw, _ := fieldmap.Get(row, p.aliases.Lead("email")...)
		email := strings.ToLower(strings.TrimSpace(emailRaw))
		if email == "" {
			diag.Dropped[DropMissingEmail]++
			continue
		}

		createdRaw, _ := fieldmap.Get(row, p.aliases.Lead("created_at")...)
		createdAt, ok := coerce.Date(createdRaw)
		if !ok {
			diag.Dropped[DropInvalidDate]++
			continue
		}

		mqlRaw, _ := fieldmap.Get(row, p.aliases.Lead("mql")...)
		sqlRaw, _ := fieldmap.Get(row, p.aliases.Lead("sql")...)
		isMQL := coerce.Bool(mqlRaw)
		isSQL := coerce.Bool(sqlRaw)

		// A true negative flag overrides both qualification flags.
		if negRaw, ok := fieldmap.Get(row, p.aliases.Lead("not_mql")...); ok && coerce.Bool(negRaw) {
			isMQL = false
			isSQL = false
		}

		record := models.LeadRecord{
			Email:       email,
			CreatedDate: coerce.DateOnly(createdAt),
			UTMSource:   utmValue(row, p.aliases.Lead("utm_source")),
			UTMMedium:   utmValue(row, p.aliases.Lead("utm_medium")),
			UTMCampaign: utmValue(row, p.aliases.Lead("utm_campaign")),
			IsMQL:       isMQL,
			IsSQL:       isSQL,
		}

		dedupe.add(rowIndex, createdAt, record)
	}

	records := dedupe.records()
	diag.GroupsAfterDedupe = len(records)
	for _, r := range records {
		if r.IsMQL {
			diag.MQLTrueAfterDedupe++
		}
		if r.IsSQL {
			diag.SQLTrueAfterDedupe++
		}
	}

	return records, diag
}

func utmValue(row fieldmap.Row, aliases []string) string {
	v, ok := fieldmap.Get(row, aliases...)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(v))
}
