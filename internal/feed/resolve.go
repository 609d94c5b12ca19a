package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrChannelNotFound means the handle page carried no channel id.
var ErrChannelNotFound = errors.New("channel id not found on handle page")

var reChannelMeta = regexp.MustCompile(`itemprop="channelId" content="(.*?)"`)

// ResolveChannelID fetches a handle page (https://www.youtube.com/@name) and
// returns the channel id embedded in it.
func (f *Fetcher) ResolveChannelID(ctx context.Context, handleURL string) (string, error) {
	if strings.TrimSpace(handleURL) == "" {
		return "", fmt.Errorf("resolve channel: empty handle url")
	}
	body, err := f.get(ctx, handleURL)
	if err != nil {
		return "", fmt.Errorf("resolve channel: %w", err)
	}
	id := channelIDFromPage(body)
	if id == "" {
		return "", fmt.Errorf("resolve channel %s: %w", handleURL, ErrChannelNotFound)
	}
	return id, nil
}

// channelIDFromPage looks for the itemprop meta tag, then the canonical
// /channel/ link, then falls back to the raw pattern for pages goquery
// cannot make sense of.
func channelIDFromPage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		if id, ok := doc.Find(`meta[itemprop="channelId"]`).First().Attr("content"); ok && strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id)
		}
		if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
			if i := strings.Index(href, "/channel/"); i >= 0 {
				id := strings.Trim(href[i+len("/channel/"):], "/")
				if id != "" {
					return id
				}
			}
		}
	}
	if m := reChannelMeta.FindSubmatch(body); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}
