package ingest

import (
	"testing"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

func ids(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertIDs(t *testing.T, got []record.Record, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got ids %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("got ids %v, want %v", ids(got), want)
		}
	}
}

func TestMergeNewestFirst(t *testing.T) {
	existing := []record.Record{rec("abc", "https://abc", "2026-01-01")}
	fresh := []record.Record{rec("xyz", "https://xyz", "2026-01-02")}
	assertIDs(t, Merge(fresh, existing, 80), "xyz", "abc")
}

func TestMergeTiesPutFreshFirst(t *testing.T) {
	existing := []record.Record{rec("old", "https://old", "2026-01-01")}
	fresh := []record.Record{rec("new", "https://new", "2026-01-01")}
	assertIDs(t, Merge(fresh, existing, 0), "new", "old")
}

func TestMergeComparesInstants(t *testing.T) {
	// Lexical order would put "2026-01-02T..." after "2026-01-10".
	records := []record.Record{
		rec("a", "https://a", "2026-01-02T23:00:00Z"),
		rec("b", "https://b", "2026-01-10"),
		rec("c", "https://c", "2026-01-02T08:00:00+09:00"),
	}
	assertIDs(t, Merge(nil, records, 0), "b", "a", "c")
}

func TestMergeUnparseableLast(t *testing.T) {
	existing := []record.Record{
		rec("broken", "https://broken", "not a date"),
		rec("abc", "https://abc", "2026-01-01"),
	}
	fresh := []record.Record{rec("empty", "https://empty", "")}
	assertIDs(t, Merge(fresh, existing, 0), "abc", "empty", "broken")
}

func TestMergeRetentionCap(t *testing.T) {
	existing := []record.Record{
		rec("d1", "https://1", "2026-01-01"),
		rec("d3", "https://3", "2026-01-03"),
		rec("d2", "https://2", "2026-01-02"),
	}
	fresh := []record.Record{
		rec("d5", "https://5", "2026-01-05"),
		rec("d4", "https://4", "2026-01-04"),
	}
	got := Merge(fresh, existing, 3)
	assertIDs(t, got, "d5", "d4", "d3")
}

func TestTruncate(t *testing.T) {
	records := []record.Record{rec("a", "", ""), rec("b", "", "")}
	if got := Truncate(records, 0); len(got) != 2 {
		t.Errorf("limit 0 should keep all, got %d", len(got))
	}
	if got := Truncate(records, 5); len(got) != 2 {
		t.Errorf("limit above length should keep all, got %d", len(got))
	}
	if got := Truncate(records, 1); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected only a, got %v", ids(got))
	}
}
