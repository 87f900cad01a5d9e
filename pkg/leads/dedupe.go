package leads

import (
	"time"

	"github.com/guestflow/platform/pkg/common/models"
)

type entry struct {
	rowIndex int
	seenAt   time.Time
	record   models.LeadRecord
}

// deduper collapses records sharing a canonical key within one batch.
// Latest timestamp wins; on an exact timestamp tie the later row wins.
// The tie-break decides which of several near-duplicate submissions
// becomes the persisted truth, so it must stay deterministic.
type deduper struct {
	order   []string
	entries map[string]entry
}

func newDeduper() *deduper {
	return &deduper{entries: make(map[string]entry)}
}

func (d *deduper) add(rowIndex int, seenAt time.Time, record models.LeadRecord) {
	key := record.Key()
	prev, exists := d.entries[key]
	if !exists {
		d.order = append(d.order, key)
		d.entries[key] = entry{rowIndex: rowIndex, seenAt: seenAt, record: record}
		return
	}
	if seenAt.After(prev.seenAt) || (seenAt.Equal(prev.seenAt) && rowIndex > prev.rowIndex) {
		d.entries[key] = entry{rowIndex: rowIndex, seenAt: seenAt, record: record}
	}
}

func (d *deduper) records() []models.LeadRecord {
	out := make([]models.LeadRecord, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.entries[key].record)
	}
	return out
}
