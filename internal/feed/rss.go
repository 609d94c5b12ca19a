package feed

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSAdapter reads generic RSS/Atom/JSON feeds (kakuyomu, RSSHub routes).
type RSSAdapter struct{}

func (RSSAdapter) Decode(raw []byte) ([]*gofeed.Item, error) {
	return decode(raw)
}

func (RSSAdapter) Extract(item *gofeed.Item) (Entry, bool) {
	if item == nil {
		return Entry{}, false
	}
	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}
	key := strings.TrimSpace(item.GUID)
	if key == "" {
		key = link
	}
	title := strings.TrimSpace(item.Title)
	if key == "" || title == "" || link == "" {
		return Entry{}, false
	}
	pub, ok := published(item)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		PlatformID: itemID(key),
		Title:      title,
		Link:       link,
		Published:  pub,
	}, true
}

// itemID derives a short stable id from a GUID or link, which for most RSS
// sources is a full URL.
func itemID(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:6])
}
