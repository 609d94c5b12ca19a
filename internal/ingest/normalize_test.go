package ingest

import (
	"testing"
	"time"

	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/feed"
	"github.com/celestialorigin/celestial-legacy/internal/record"
)

var sonic = config.Source{Name: "sonic", Store: "updates", Type: config.SourceTypeYouTube, Source: "youtube", Category: "SONIC", Enabled: true}

func entry(id, title string, published time.Time) feed.Entry {
	return feed.Entry{PlatformID: id, Title: title, Link: "https://youtube.com/watch?v=" + id, Published: published}
}

func TestNormalizeUpdates(t *testing.T) {
	n := Normalizer{Format: config.FormatUpdates}
	e := entry("xyz", "Void Pattern", time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))

	r := n.Normalize(sonic, e)
	if r.ID != "SONIC-xyz" {
		t.Errorf("id = %q, want SONIC-xyz", r.ID)
	}
	if r.Date != "2026-01-02" {
		t.Errorf("date = %q, want 2026-01-02", r.Date)
	}
	if r.Message != record.Message("SONIC") {
		t.Errorf("unexpected message %q", r.Message)
	}
	if r.Source != record.SourceYouTube || r.Category != "SONIC" {
		t.Errorf("unexpected source/category %q/%q", r.Source, r.Category)
	}
	if r.Media == nil || r.Media.Embed != "https://www.youtube.com/embed/xyz" {
		t.Errorf("unexpected media %+v", r.Media)
	}
	if r.Narrative != nil || r.Auto || r.Observer != "" {
		t.Error("updates records carry no signal fields")
	}
}

func TestNormalizeUnknownCategoryFallsBack(t *testing.T) {
	src := config.Source{Name: "misc", Type: config.SourceTypeRSS, Category: "whatever"}
	r := Normalizer{Format: config.FormatUpdates}.Normalize(src, entry("1", "t", time.Now()))
	if r.Message != record.DefaultMessage {
		t.Errorf("message = %q, want default", r.Message)
	}
	if r.ID != "WHATEVER-1" {
		t.Errorf("id = %q", r.ID)
	}
}

func TestNormalizeSignals(t *testing.T) {
	n := Normalizer{Format: config.FormatSignals, Observer: "Lukia"}
	published := time.Date(2026, 1, 2, 19, 30, 0, 0, time.FixedZone("JST", 9*3600))
	src := config.Source{Name: "youtube-signals", Type: config.SourceTypeYouTube}

	r := n.Normalize(src, entry("xyz", "【LIVE】Star Session", published))
	if r.ID != "yt-xyz" {
		t.Errorf("provisional id = %q, want yt-xyz", r.ID)
	}
	if r.Date != "2026-01-02T10:30:00Z" {
		t.Errorf("date = %q, want UTC RFC3339", r.Date)
	}
	if r.Kind != record.KindStream {
		t.Errorf("kind = %q, want stream", r.Kind)
	}
	if !r.Auto || r.Observer != "Lukia" || r.Template != SignalTemplate {
		t.Errorf("unexpected signal fields %+v", r)
	}
	if r.Narrative == nil || r.Narrative.Header != record.NarrativeHeader {
		t.Fatalf("missing narrative: %+v", r.Narrative)
	}
	if last := r.Narrative.Lines[len(r.Narrative.Lines)-1]; last != "座標：<https://youtube.com/watch?v=xyz>" {
		t.Errorf("last narrative line = %q", last)
	}
}

func TestNormalizeKind(t *testing.T) {
	n := Normalizer{Format: config.FormatSignals}
	tests := []struct {
		name string
		src  config.Source
		want record.Kind
	}{
		{"configured kind wins", config.Source{Name: "k", Type: config.SourceTypeRSS, Source: "kakuyomu", Kind: "novel"}, record.KindNovel},
		{"invalid kind is inferred", config.Source{Name: "k", Type: config.SourceTypeRSS, Source: "kakuyomu", Kind: "bogus"}, record.KindNovel},
		{"rss without source uses name", config.Source{Name: "blog", Type: config.SourceTypeRSS}, record.KindPost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := n.Normalize(tt.src, entry("1", "Untitled", time.Now()))
			if r.Kind != tt.want {
				t.Errorf("kind = %q, want %q", r.Kind, tt.want)
			}
		})
	}
}

func TestNormalizeSourceTag(t *testing.T) {
	tests := []struct {
		src  config.Source
		want record.Source
	}{
		{config.Source{Name: "a", Type: config.SourceTypeYouTube}, record.SourceYouTube},
		{config.Source{Name: "a", Type: config.SourceTypeRSS, Source: "Kakuyomu"}, record.SourceKakuyomu},
		{config.Source{Name: "blog", Type: config.SourceTypeRSS}, record.Source("blog")},
	}
	for _, tt := range tests {
		if got := sourceTag(tt.src); got != tt.want {
			t.Errorf("sourceTag(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestNormalizeBatchesKeepsOrder(t *testing.T) {
	now := time.Now()
	batches := []feed.Batch{
		{Source: sonic, Entries: []feed.Entry{entry("a", "A", now), entry("b", "B", now)}},
		{Source: sonic, Entries: []feed.Entry{entry("c", "C", now)}},
	}
	got := Normalizer{Format: config.FormatUpdates}.NormalizeBatches(batches)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []string{"SONIC-a", "SONIC-b", "SONIC-c"} {
		if got[i].ID != want {
			t.Errorf("record %d id = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestNormalizeUpdatesUsesFeedOffset(t *testing.T) {
	jst := time.FixedZone("", 9*3600)
	src := config.Source{Name: "kakuyomu", Type: config.SourceTypeRSS, Source: "kakuyomu", Category: "FIELD"}
	e := feed.Entry{PlatformID: "p1", Title: "第一話", Link: "https://kakuyomu.jp/works/1/episodes/1",
		Published: time.Date(2026, 1, 2, 8, 0, 0, 0, jst)}

	updates := Normalizer{Format: config.FormatUpdates}.Normalize(src, e)
	if updates.Date != "2026-01-02" {
		t.Errorf("updates date = %q, want 2026-01-02", updates.Date)
	}
	signals := Normalizer{Format: config.FormatSignals}.Normalize(src, e)
	if signals.Date != "2026-01-01T23:00:00Z" {
		t.Errorf("signals date = %q, want 2026-01-01T23:00:00Z", signals.Date)
	}
}
