package ingest

import (
	"sort"
	"time"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

// Merge puts fresh ahead of existing, sorts newest first and keeps at most
// limit records. Dates are compared as instants; records with an unparseable
// date sort last. Equal dates keep their relative order, so fresh records
// precede existing ones. limit <= 0 keeps everything.
func Merge(fresh, existing []record.Record, limit int) []record.Record {
	merged := make([]record.Record, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)
	SortByDate(merged)
	return Truncate(merged, limit)
}

// SortByDate sorts records newest first, stably.
func SortByDate(records []record.Record) {
	keys := make([]sortKey, len(records))
	for i, r := range records {
		t, ok := r.Time()
		keys[i] = sortKey{t: t, ok: ok}
	}
	sort.Stable(byDate{records: records, keys: keys})
}

func Truncate(records []record.Record, limit int) []record.Record {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

type sortKey struct {
	t  time.Time
	ok bool
}

type byDate struct {
	records []record.Record
	keys    []sortKey
}

func (b byDate) Len() int { return len(b.records) }

func (b byDate) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

func (b byDate) Less(i, j int) bool {
	ki, kj := b.keys[i], b.keys[j]
	if ki.ok != kj.ok {
		return ki.ok
	}
	return ki.t.After(kj.t)
}
