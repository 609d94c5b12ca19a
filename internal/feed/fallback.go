package feed

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// decode parses with gofeed and falls back to pattern matching when the
// document is not well-formed enough for a real parser.
func decode(raw []byte) ([]*gofeed.Item, error) {
	// gofeed.Parser keeps per-parse state, so one per call.
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err == nil {
		return parsed.Items, nil
	}
	items := decodeFallback(raw)
	if len(items) == 0 {
		return nil, err
	}
	return items, nil
}

var (
	reEntry     = regexp.MustCompile(`(?s)<(entry|item)(?:\s[^>]*)?>(.*?)</(?:entry|item)>`)
	reVideoID   = regexp.MustCompile(`(?s)<yt:videoId>(.*?)</yt:videoId>`)
	reTitle     = regexp.MustCompile(`(?s)<title(?:\s[^>]*)?>(.*?)</title>`)
	rePublished = regexp.MustCompile(`(?s)<(?:published|pubDate|dc:date)>(.*?)</(?:published|pubDate|dc:date)>`)
	reID        = regexp.MustCompile(`(?s)<(?:id|guid)(?:\s[^>]*)?>(.*?)</(?:id|guid)>`)
	reLinkHref  = regexp.MustCompile(`<link\s[^>]*?href="([^"]*)"`)
	reLinkText  = regexp.MustCompile(`(?s)<link>(.*?)</link>`)
	reCDATA     = regexp.MustCompile(`(?s)^<!\[CDATA\[(.*)\]\]>$`)
)

// offsetLayouts carry a numeric offset, so parsing keeps the feed's own zone.
var offsetLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05-0700",
}

var fallbackDateLayouts = append(append([]string{}, offsetLayouts...),
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 MST",
)

// decodeFallback extracts items with fixed patterns. It only ever sees
// documents gofeed rejected, so it is lenient: fields it cannot find are left
// empty for Extract to reject.
func decodeFallback(raw []byte) []*gofeed.Item {
	var items []*gofeed.Item
	for _, m := range reEntry.FindAllSubmatch(raw, -1) {
		body := m[2]
		item := &gofeed.Item{
			Title: firstMatch(reTitle, body),
			GUID:  firstMatch(reID, body),
			Link:  firstMatch(reLinkHref, body),
		}
		if item.Link == "" {
			item.Link = firstMatch(reLinkText, body)
		}
		if id := firstMatch(reVideoID, body); id != "" {
			item.Extensions = ext.Extensions{
				"yt": {"videoId": []ext.Extension{{Name: "videoId", Value: id}}},
			}
		}
		if published := firstMatch(rePublished, body); published != "" {
			item.Published = published
			if t, err := parseDate(published, fallbackDateLayouts); err == nil {
				item.PublishedParsed = &t
			}
		}
		items = append(items, item)
	}
	return items
}

func firstMatch(re *regexp.Regexp, body []byte) string {
	m := re.FindSubmatch(body)
	if m == nil {
		return ""
	}
	s := strings.TrimSpace(string(m[1]))
	if c := reCDATA.FindStringSubmatch(s); c != nil {
		return strings.TrimSpace(c[1])
	}
	return html.UnescapeString(s)
}

func parseDate(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// published returns the item date in the offset the feed wrote it in.
// PublishedParsed is UTC, so it is only used when the raw string has no
// numeric offset.
func published(item *gofeed.Item) (time.Time, bool) {
	if raw := strings.TrimSpace(item.Published); raw != "" {
		if t, err := parseDate(raw, offsetLayouts); err == nil {
			return t, true
		}
	}
	if item.PublishedParsed != nil {
		return *item.PublishedParsed, true
	}
	return time.Time{}, false
}
