package record

import (
	"strings"
	"time"
)

// Source tags the upstream platform a record came from.
type Source string

const (
	SourceYouTube  Source = "youtube"
	SourceKakuyomu Source = "kakuyomu"
	SourcePixiv    Source = "pixiv"
	SourceManual   Source = "manual"
	SourceNoise    Source = "noise"
)

// Kind classifies the observed item.
type Kind string

const (
	KindVideo  Kind = "video"
	KindNovel  Kind = "novel"
	KindPost   Kind = "post"
	KindStream Kind = "stream"
	KindNote   Kind = "note"
)

// Media holds embeddable URLs for a record.
type Media struct {
	Embed string `json:"embed,omitempty"`
	Thumb string `json:"thumb,omitempty"`
}

// Narrative is the display block shown for an auto-ingested signal.
type Narrative struct {
	Header string   `json:"header"`
	Lines  []string `json:"lines"`
}

// Record is one persisted entry of a store.
type Record struct {
	ID        string     `json:"id"`
	Source    Source     `json:"source"`
	Kind      Kind       `json:"kind,omitempty"`
	Category  string     `json:"category,omitempty"`
	Title     string     `json:"title"`
	Date      string     `json:"date"`
	URL       string     `json:"url"`
	Message   string     `json:"message,omitempty"`
	Media     *Media     `json:"media,omitempty"`
	Auto      bool       `json:"auto,omitempty"`
	Observer  string     `json:"observer,omitempty"`
	Template  string     `json:"template,omitempty"`
	Narrative *Narrative `json:"narrative,omitempty"`
}

// Date layouts a store may persist.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = time.RFC3339
)

// Time parses the record date. Both calendar dates and RFC3339 timestamps are
// accepted; ok is false when neither layout matches.
func (r Record) Time() (t time.Time, ok bool) {
	return ParseDate(r.Date)
}

// ParseDate parses a stored date value.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
