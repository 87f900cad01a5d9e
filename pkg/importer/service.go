package importer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guestflow/platform/pkg/bookings"
	"github.com/guestflow/platform/pkg/common/kafka"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/importstatus"
	"github.com/guestflow/platform/pkg/ingest"
	"github.com/guestflow/platform/pkg/leads"
	"github.com/guestflow/platform/pkg/observability/metrics"
	"github.com/guestflow/platform/pkg/tabular"
	"gorm.io/datatypes"
)

// Import kinds, used for audit rows, status cache keys and event sources.
const (
	KindLeadsCSV    = "leads_csv"
	KindBookingsCSV = "bookings_csv"
	KindLeadsAPI    = "leads_api"
	KindBookingsAPI = "bookings_api"
)

var ErrRemoteNotConfigured = fmt.Errorf("remote tabular source is not configured")

// ImportResult is what one import invocation hands back to the caller:
// the full parse diagnostics plus the upsert outcome. Diagnostics are
// produced even when zero rows were usable.
type ImportResult struct {
	Kind        string       `json:"kind"`
	Source      string       `json:"source"`
	Diagnostics interface{}  `json:"diagnostics"`
	Stats       ingest.Stats `json:"stats"`
}

type Service struct {
	leadParser    *leads.Parser
	bookingParser *bookings.Parser
	repo          *ingest.Repository
	remote        *tabular.Client
	producer      *kafka.Producer
	status        *importstatus.Store
	leadsTable    string
	bookingsTable string
}

func NewService(
	leadParser *leads.Parser,
	bookingParser *bookings.Parser,
	repo *ingest.Repository,
	remote *tabular.Client,
	producer *kafka.Producer,
	status *importstatus.Store,
	leadsTable, bookingsTable string,
) *Service {
	return &Service{
		leadParser:    leadParser,
		bookingParser: bookingParser,
		repo:          repo,
		remote:        remote,
		producer:      producer,
		status:        status,
		leadsTable:    leadsTable,
		bookingsTable: bookingsTable,
	}
}

// ImportLeadsCSV runs the full lead pipeline over an uploaded file:
// parse, dedupe, upsert, audit.
func (s *Service) ImportLeadsCSV(ctx context.Context, raw []byte, source string) (*ImportResult, error) {
	records, diag := s.leadParser.ParseCSV(raw)
	stats := s.repo.UpsertLeads(ctx, records, source)

	metrics.ObserveLeadImport(diag.TotalRows, droppedTotal(diag.Dropped), stats.Inserted, stats.Updated)

	result := &ImportResult{Kind: KindLeadsCSV, Source: source, Diagnostics: diag, Stats: stats}
	s.finish(ctx, result)
	return result, nil
}

func (s *Service) ImportBookingsCSV(ctx context.Context, raw []byte, source string) (*ImportResult, error) {
	records, diag := s.bookingParser.ParseCSV(raw)
	stats := s.repo.UpsertBookings(ctx, records, source)

	metrics.ObserveBookingImport(diag.TotalRows, droppedTotal(diag.Dropped), stats.Inserted, stats.Updated)

	result := &ImportResult{Kind: KindBookingsCSV, Source: source, Diagnostics: diag, Stats: stats}
	s.finish(ctx, result)
	return result, nil
}

// ImportLeadsAPI pulls the complete lead set from the remote tabular
// source and upserts it.
func (s *Service) ImportLeadsAPI(ctx context.Context) (*ImportResult, error) {
	if s.remote == nil {
		return nil, ErrRemoteNotConfigured
	}

	raw, err := s.remote.ListRecords(ctx, s.leadsTable)
	if err != nil {
		return nil, fmt.Errorf("pulling leads from remote source: %w", err)
	}

	records, summary := tabular.MapLeads(raw)
	source := "tabular:" + s.leadsTable
	stats := s.repo.UpsertLeads(ctx, records, source)

	metrics.ObserveLeadImport(summary.TotalRaw, summary.TotalRaw-summary.AfterQualifiedFilter, stats.Inserted, stats.Updated)

	result := &ImportResult{Kind: KindLeadsAPI, Source: source, Diagnostics: summary, Stats: stats}
	s.finish(ctx, result)
	return result, nil
}

func (s *Service) ImportBookingsAPI(ctx context.Context) (*ImportResult, error) {
	if s.remote == nil {
		return nil, ErrRemoteNotConfigured
	}

	raw, err := s.remote.ListRecords(ctx, s.bookingsTable)
	if err != nil {
		return nil, fmt.Errorf("pulling bookings from remote source: %w", err)
	}

	records, summary := tabular.MapBookings(raw)
	source := "tabular:" + s.bookingsTable
	stats := s.repo.UpsertBookings(ctx, records, source)

	metrics.ObserveBookingImport(summary.TotalRaw, summary.TotalRaw-summary.Deduped, stats.Inserted, stats.Updated)

	result := &ImportResult{Kind: KindBookingsAPI, Source: source, Diagnostics: summary, Stats: stats}
	s.finish(ctx, result)
	return result, nil
}

// LastRun returns the cached summary of the most recent import for a kind.
func (s *Service) LastRun(ctx context.Context, kind string) (map[string]interface{}, error) {
	return s.status.LastRun(ctx, kind)
}

// finish handles the best-effort tail of every import: audit row, event,
// status cache. None of these failures undo a completed upsert.
func (s *Service) finish(ctx context.Context, result *ImportResult) {
	diagMap := toMap(result.Diagnostics)

	if err := s.repo.RecordRun(ctx, &ingest.ImportRun{
		Kind:        result.Kind,
		Source:      result.Source,
		Diagnostics: datatypes.JSONMap(diagMap),
		Inserted:    result.Stats.Inserted,
		Updated:     result.Stats.Updated,
	}); err != nil {
		logger.Log.WithError(err).WithField("kind", result.Kind).Warn("failed to record import run")
	}

	if s.producer != nil {
		if err := s.producer.PublishEvent(ctx, "import.completed", result.Kind, toMap(result)); err != nil {
			logger.Log.WithError(err).WithField("kind", result.Kind).Warn("failed to publish import event")
		}
	}

	s.status.SaveLastRun(ctx, result.Kind, result)
}

func droppedTotal(dropped map[string]int) int {
	total := 0
	for _, n := range dropped {
		total += n
	}
	return total
}

func toMap(v interface{}) map[string]interface{} {
	payload, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(payload, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
