package ingest

import (
	"strings"

	"github.com/celestialorigin/celestial-legacy/internal/classify"
	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/feed"
	"github.com/celestialorigin/celestial-legacy/internal/record"
)

// SignalTemplate tags records built by the signals format.
const SignalTemplate = "SIGNAL"

// Normalizer turns feed entries into records for one store format.
type Normalizer struct {
	Format   config.Format
	Observer string
}

// Normalize builds a record from an entry. The id it assigns is stable for
// the same upstream item across runs.
func (n Normalizer) Normalize(src config.Source, e feed.Entry) record.Record {
	source := sourceTag(src)
	r := record.Record{
		Source: source,
		Title:  e.Title,
		URL:    e.Link,
	}
	if src.Type == config.SourceTypeYouTube {
		r.Media = &record.Media{
			Embed: feed.EmbedURL(e.PlatformID),
			Thumb: feed.ThumbURL(e.PlatformID),
		}
	}

	switch n.Format {
	case config.FormatSignals:
		r.ID = provisionalPrefix(source) + "-" + e.PlatformID
		r.Date = e.Published.UTC().Format(record.TimestampLayout)
		r.Kind = kindFor(src, e.Title, source)
		r.Category = strings.ToUpper(src.Category)
		r.Narrative = record.NewNarrative(source, r.Kind, r.URL)
		r.Auto = true
		r.Observer = n.Observer
		r.Template = SignalTemplate
	default:
		category := strings.ToUpper(src.Category)
		if category == "" {
			category = strings.ToUpper(string(source))
		}
		r.ID = category + "-" + e.PlatformID
		r.Category = category
		r.Date = e.Published.Format(record.DateLayout)
		r.Message = record.Message(category)
	}
	return r
}

// NormalizeBatches normalizes every entry of the given batches in order.
func (n Normalizer) NormalizeBatches(batches []feed.Batch) []record.Record {
	var out []record.Record
	for _, b := range batches {
		for _, e := range b.Entries {
			out = append(out, n.Normalize(b.Source, e))
		}
	}
	return out
}

func sourceTag(src config.Source) record.Source {
	switch {
	case src.Source != "":
		return record.Source(strings.ToLower(src.Source))
	case src.Type == config.SourceTypeYouTube:
		return record.SourceYouTube
	default:
		return record.Source(src.Name)
	}
}

func provisionalPrefix(source record.Source) string {
	if source == record.SourceYouTube {
		return "yt"
	}
	return string(source)
}

// kindFor uses the configured kind when it names a known one and infers it
// from the title otherwise.
func kindFor(src config.Source, title string, source record.Source) record.Kind {
	if src.Kind != "" {
		if k, err := classify.ResolveKind(src.Kind); err == nil {
			return k
		}
	}
	return classify.Classify(title, source)
}
